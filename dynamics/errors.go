package dynamics

import "github.com/pkg/errors"

// NewScrewListShapeError returns an error for a screw list that is not 6xn.
func NewScrewListShapeError(rows, cols int) error {
	return errors.Errorf("screw list must be 6xn with one column per joint, got %dx%d", rows, cols)
}

// NewInputLengthError returns an error for a joint vector whose length does
// not match the chain's degrees of freedom.
func NewInputLengthError(name string, have, want int) error {
	return errors.Errorf("%s has %d values but the chain has %d joints", name, have, want)
}

// NewFrameCountError returns an error for a link frame list of the wrong
// length; a chain with n joints needs n+1 transforms, the last carrying
// the final link's center of mass to the end effector.
func NewFrameCountError(have, joints int) error {
	return errors.Errorf("link frame list must hold %d transforms for %d joints, got %d", joints+1, joints, have)
}

// NewFrameShapeError returns an error for a link frame that is not a 4x4
// homogeneous transform.
func NewFrameShapeError(i, rows, cols int) error {
	return errors.Errorf("link frame %d must be a 4x4 homogeneous transform, got %dx%d", i, rows, cols)
}

// NewInertiaCountError returns an error for a spatial inertia list that
// does not hold one matrix per joint.
func NewInertiaCountError(have, joints int) error {
	return errors.Errorf("spatial inertia list must hold one matrix per joint, got %d for %d joints", have, joints)
}

// NewInertiaShapeError returns an error for a spatial inertia that is not
// 6x6.
func NewInertiaShapeError(i, rows, cols int) error {
	return errors.Errorf("spatial inertia %d must be 6x6, got %dx%d", i, rows, cols)
}

// NewWrenchLengthError returns an error for a wrench that does not have
// six components.
func NewWrenchLengthError(have int) error {
	return errors.Errorf("wrench must have 6 components (mx, my, mz, fx, fy, fz), got %d", have)
}
