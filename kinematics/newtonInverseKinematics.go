package kinematics

import (
	"context"

	"github.com/edaniels/golog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
)

// NewtonIK wraps the damped Newton iteration in a solver that retries
// from random in-limit seeds until it finds a solution the model's joints
// can actually take.
type NewtonIK struct {
	model         *chain.Chain
	logger        golog.Logger
	maxIterations int
	maxRestarts   int
	tolOmega      float64
	tolV          float64
	randSeed      *rand.Rand
}

// CreateNewtonIKSolver creates a Newton-Raphson IK solver for the given
// model. iter bounds the iterations spent on each attempt; pass a value
// below 1 for the default of 100.
func CreateNewtonIKSolver(model *chain.Chain, logger golog.Logger, iter int) *NewtonIK {
	ik := &NewtonIK{model: model, logger: logger}
	ik.randSeed = rand.New(rand.NewSource(1))
	// How close the body twist must get to zero, rotation then translation.
	ik.tolOmega = 1e-3
	ik.tolV = 1e-3
	if iter < 1 {
		iter = 100
	}
	ik.maxIterations = iter
	ik.maxRestarts = 30
	return ik
}

// SetSeed sets the random seed of this solver.
func (ik *NewtonIK) SetSeed(seed int64) {
	ik.randSeed = rand.New(rand.NewSource(uint64(seed)))
}

// Solve iterates from the given seed first, then from random restarts
// within the joint limits. A solution is accepted only if it is within
// limits; goals no restart converges on yield an error.
func (ik *NewtonIK) Solve(ctx context.Context, goal *mat.Dense, seed []float64) ([]float64, error) {
	if err := checkTransform(goal, "goal"); err != nil {
		return nil, err
	}
	home := ik.model.Home()
	screws := ik.model.BodyScrews()

	attempt := make([]float64, len(seed))
	copy(attempt, seed)
	tries := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		solution, ok, err := InverseBody(home, screws, goal, attempt, ik.tolOmega, ik.tolV, ik.maxIterations)
		if err != nil {
			// Shape and tolerance errors will not improve with retries.
			return nil, err
		}
		if ok && ik.model.WithinLimits(solution) {
			return solution, nil
		}
		tries++
		if tries >= ik.maxRestarts {
			return nil, NewSolveFailedError(tries)
		}
		ik.logger.Debugf("no converged in-limit solution, restarting from random seed (try %d)", tries)
		attempt = ik.model.RandomSeed(ik.randSeed)
	}
}
