package kinematics

import "github.com/pkg/errors"

// NewScrewListShapeError returns an error for a screw list that is not 6xn.
func NewScrewListShapeError(rows, cols int) error {
	return errors.Errorf("screw list must be 6xn with one column per joint, got %dx%d", rows, cols)
}

// NewTransformShapeError returns an error for a pose argument that is not a
// 4x4 homogeneous transform.
func NewTransformShapeError(name string, rows, cols int) error {
	return errors.Errorf("%s must be a 4x4 homogeneous transform, got %dx%d", name, rows, cols)
}

// NewInputLengthError returns an error for a joint vector whose length does
// not match the chain's degrees of freedom.
func NewInputLengthError(name string, have, want int) error {
	return errors.Errorf("%s has %d values but the chain has %d joints", name, have, want)
}

// NewToleranceError returns an error for non-positive convergence tolerances.
func NewToleranceError(tolOmega, tolV float64) error {
	return errors.Errorf("convergence tolerances must be positive, got tolOmega=%v tolV=%v", tolOmega, tolV)
}

// NewIterationCountError returns an error for a non-positive iteration budget.
func NewIterationCountError(iterations int) error {
	return errors.Errorf("iteration budget must be at least 1, got %d", iterations)
}

// NewSolveFailedError returns an error for a solver that exhausted its
// restart budget without converging.
func NewSolveFailedError(attempts int) error {
	return errors.Errorf("unable to solve for position after %d attempts", attempts)
}
