//go:build !windows && !no_cgo

package kinematics

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
	"github.com/screwtheory/screwkit/spatialmath"
)

const (
	constrainedTries  = 30
	nloptStepsPerIter = 4001
	defaultJump       = 1e-8
)

var errNoSolve = errors.New("kinematics could not solve for position")

// NloptIK solves IK with nlopt's SLSQP optimizer over the squared norm of
// the body twist to the goal. Joint limits become optimizer bounds, so
// solutions are within limits by construction.
type NloptIK struct {
	id            int
	model         *chain.Chain
	logger        golog.Logger
	maxIterations int
	epsilon       float64
	solveEpsilon  float64
	jump          float64
	randSeed      *rand.Rand
}

// CreateNloptIKSolver creates an nlopt IK solver for the given model.
// iter bounds the total optimizer iterations across restarts; pass a
// value below 1 for the default of 5000.
func CreateNloptIKSolver(model *chain.Chain, logger golog.Logger, iter int) (*NloptIK, error) {
	ik := &NloptIK{model: model, logger: logger}
	ik.randSeed = rand.New(rand.NewSource(1))
	// How close we want to get to the goal.
	ik.epsilon = 1e-3
	// Stop optimizing when iterations change by less than this much.
	ik.solveEpsilon = math.Pow(ik.epsilon, 4)
	if iter < 1 {
		iter = 5000
	}
	ik.maxIterations = iter
	// How much to adjust joints to determine slope.
	ik.jump = defaultJump
	return ik, nil
}

// SetSeed sets the random seed of this solver.
func (ik *NloptIK) SetSeed(seed int64) {
	ik.randSeed = rand.New(rand.NewSource(uint64(seed)))
}

// Solve runs the optimizer from the given seed, then from random
// restarts within the joint limits, until the goal is reached or the
// iteration budget is spent.
func (ik *NloptIK) Solve(ctx context.Context, goal *mat.Dense, seed []float64) ([]float64, error) {
	if err := checkTransform(goal, "goal"); err != nil {
		return nil, err
	}
	dof := ik.model.DOF()
	if len(seed) != dof {
		return nil, NewInputLengthError("seed", len(seed), dof)
	}
	home := ik.model.Home()
	screws := ik.model.BodyScrews()
	lowerBound, upperBound := limitsToArrays(ik.model.Limits())

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(dof))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	evalDist := func(x []float64) float64 {
		current, err := ForwardBody(home, screws, x)
		if err != nil {
			ik.logger.Errorf("error calculating forward position in nlopt %q", err)
			return math.Inf(1)
		}
		var rel mat.Dense
		rel.Mul(spatialmath.TransInv(current), goal)
		twist := spatialmath.TwistVee(spatialmath.TransLog(&rel))
		return floats.Dot(twist, twist)
	}

	iterations := 0
	nloptMinFunc := func(x, gradient []float64) float64 {
		iterations++
		select {
		case <-ctx.Done():
			err = multierr.Combine(err, opt.ForceStop())
			return 0
		default:
		}

		dist := evalDist(x)
		if len(gradient) > 0 {
			// Slopes by finite differences, stepping backwards off the
			// upper bound rather than past it.
			for i := range gradient {
				flip := false
				x[i] += ik.jump
				if x[i] >= upperBound[i] {
					flip = true
					x[i] -= 2 * ik.jump
				}
				dist2 := evalDist(x)
				gradient[i] = (dist2 - dist) / ik.jump
				if flip {
					x[i] += ik.jump
					gradient[i] *= -1
				} else {
					x[i] -= ik.jump
				}
			}
		}
		return dist
	}

	err = multierr.Combine(
		opt.SetFtolAbs(ik.solveEpsilon),
		opt.SetFtolRel(ik.solveEpsilon),
		opt.SetLowerBounds(lowerBound),
		opt.SetMinObjective(nloptMinFunc),
		opt.SetStopVal(ik.epsilon*ik.epsilon),
		opt.SetUpperBounds(upperBound),
		opt.SetXtolAbs1(ik.solveEpsilon),
		opt.SetXtolRel(ik.solveEpsilon),
		opt.SetMaxEval(nloptStepsPerIter),
	)
	if err != nil {
		return nil, err
	}

	startingPos := make([]float64, len(seed))
	copy(startingPos, seed)
	// Parallel solvers beyond the first skip straight to random seeds so
	// they explore different basins than the caller's seed.
	if ik.id > 1 {
		startingPos = ik.model.RandomSeed(ik.randSeed)
	}

	tries := 0
	for iterations < ik.maxIterations {
		select {
		case <-ctx.Done():
			return nil, multierr.Append(err, ctx.Err())
		default:
		}
		solutionRaw, result, nloptErr := opt.Optimize(startingPos)
		if nloptErr != nil {
			// nlopt sometimes reports failures on hard random starts.
			// Record and try from somewhere else.
			err = multierr.Combine(err, nloptErr)
		}
		if solutionRaw != nil && result < ik.epsilon*ik.epsilon && ik.model.WithinLimits(solutionRaw) {
			return solutionRaw, nil
		}
		tries++
		if tries >= constrainedTries {
			break
		}
		startingPos = ik.model.RandomSeed(ik.randSeed)
	}
	return nil, multierr.Combine(errNoSolve, err)
}
