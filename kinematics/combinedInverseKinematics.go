package kinematics

import (
	"context"
	"runtime"
	"sync"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
)

// CombinedIK defines the fields necessary to run a combined solver.
type CombinedIK struct {
	solvers []InverseKinematics
	model   *chain.Chain
	logger  golog.Logger
}

// CreateCombinedIKSolver creates a combined parallel IK solver: one Newton
// solver working from the caller's seed plus nlopt solvers working from
// random seeds, nSolvers in total. Each is given a different random seed.
// When asked to solve, all solvers run in parallel and the first valid
// solution found is returned. Pass nSolvers below 1 to size the pool to
// the machine's CPU count.
func CreateCombinedIKSolver(model *chain.Chain, logger golog.Logger, nSolvers int) (*CombinedIK, error) {
	ik := &CombinedIK{}
	ik.model = model
	if nSolvers < 1 {
		nSolvers = runtime.NumCPU()
	}
	newton := CreateNewtonIKSolver(model, logger, 0)
	newton.SetSeed(1000)
	ik.solvers = append(ik.solvers, newton)
	for i := 2; i <= nSolvers; i++ {
		nlopt, err := CreateNloptIKSolver(model, logger, 0)
		if err != nil {
			return nil, err
		}
		nlopt.id = i
		nlopt.SetSeed(int64(i * 1000))
		ik.solvers = append(ik.solvers, nlopt)
	}
	ik.logger = logger
	return ik, nil
}

// Model returns the associated model.
func (ik *CombinedIK) Model() *chain.Chain {
	return ik.model
}

// Solve initiates solving for the given goal in all child solvers, seeding
// with the specified initial joint positions, and returns the first
// solution any of them finds. The remaining solvers are cancelled once one
// succeeds; if all fail, their errors are returned together.
func (ik *CombinedIK) Solve(ctx context.Context, goal *mat.Dense, seed []float64) ([]float64, error) {
	if err := checkTransform(goal, "goal"); err != nil {
		return nil, err
	}
	ik.logger.Debugf("starting joint positions: %v", seed)

	ctxWithCancel, cancel := context.WithCancel(ctx)
	defer cancel()

	solutions := make(chan []float64, len(ik.solvers))
	errChan := make(chan error, len(ik.solvers))
	var activeSolvers sync.WaitGroup
	activeSolvers.Add(len(ik.solvers))

	for _, solver := range ik.solvers {
		thisSolver := solver
		utils.PanicCapturingGo(func() {
			defer activeSolvers.Done()
			solution, err := thisSolver.Solve(ctxWithCancel, goal, seed)
			if err != nil {
				errChan <- err
				return
			}
			solutions <- solution
		})
	}

	// Wait until either 1) we have a success or 2) all solvers have failed.
	var collectedErrs error
	for returned := 0; returned < len(ik.solvers); returned++ {
		select {
		case solution := <-solutions:
			cancel()
			activeSolvers.Wait()
			return solution, nil
		case err := <-errChan:
			collectedErrs = multierr.Combine(collectedErrs, err)
		}
	}
	activeSolvers.Wait()
	return nil, collectedErrs
}
