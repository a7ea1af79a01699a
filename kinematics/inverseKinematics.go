package kinematics

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
)

// InverseKinematics is implemented by every solver in this package. Solve
// searches for joint positions within the model's limits that reach the
// goal pose, starting the search from seed. Exhausting the solver's
// budget without converging is reported as an error; callers that need to
// observe a plain did-not-converge outcome can use InverseBody or
// InverseSpace directly.
type InverseKinematics interface {
	Solve(ctx context.Context, goal *mat.Dense, seed []float64) ([]float64, error)
}

// limitsToArrays splits joint limits into the lower and upper bound
// slices optimization backends want.
func limitsToArrays(limits []chain.Limit) ([]float64, []float64) {
	low := make([]float64, 0, len(limits))
	high := make([]float64, 0, len(limits))
	for _, limit := range limits {
		low = append(low, limit.Min)
		high = append(high, limit.Max)
	}
	return low, high
}
