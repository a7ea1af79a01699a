package chain

import "github.com/pkg/errors"

// NewNoJointsError returns an error for a config describing no joints.
func NewNoJointsError() error {
	return errors.New("chain config must describe at least one joint")
}

// NewDuplicateIDError returns an error for an id used by more than one link
// or joint.
func NewDuplicateIDError(id string) error {
	return errors.Errorf("duplicate id %q in chain config", id)
}

// NewUnknownParentError returns an error for a link or joint whose parent
// does not exist.
func NewUnknownParentError(id, parent string) error {
	return errors.Errorf("%q names unknown parent %q", id, parent)
}

// NewBranchError returns an error for a node with more than one child; only
// serial chains are supported.
func NewBranchError(parent string) error {
	return errors.Errorf("%q has more than one child, only serial chains are supported", parent)
}

// NewEndEffectorCountError returns an error when the config does not have
// exactly one childless link to act as the end effector.
func NewEndEffectorCountError(leaves []string) error {
	return errors.Errorf("chain must have exactly one end effector link, found %d %v", len(leaves), leaves)
}

// NewDisconnectedError returns an error for nodes unreachable from the end
// effector, which indicates a cycle or a second chain in the config.
func NewDisconnectedError(id string) error {
	return errors.Errorf("%q is not connected to the chain ending at the end effector", id)
}

// NewBaseCountError returns an error when the config does not have exactly
// one link parented to the world.
func NewBaseCountError(n int) error {
	return errors.Errorf("chain must have exactly one link with parent %q, found %d", World, n)
}

// NewJointTypeError returns an error for an unsupported joint type.
func NewJointTypeError(jointID, jointType string) error {
	return errors.Errorf("joint %q has unsupported type %q, want %q or %q", jointID, jointType, JointTypeRevolute, JointTypePrismatic)
}

// NewZeroAxisError returns an error for a joint axis with no direction.
func NewZeroAxisError(jointID string) error {
	return errors.Errorf("joint %q has a zero axis", jointID)
}

// NewLimitOrderError returns an error for a joint limit with min above max.
func NewLimitOrderError(jointID string, min, max float64) error {
	return errors.Errorf("joint %q has min limit %v above max limit %v", jointID, min, max)
}

// NewInertialValueError returns an error for inertial data that is not
// physically meaningful.
func NewInertialValueError(linkID, reason string) error {
	return errors.Errorf("link %q has invalid inertial data: %s", linkID, reason)
}

// NewPartialInertialError returns an error for a config where only some
// moving links carry inertial data.
func NewPartialInertialError(linkID string) error {
	return errors.Errorf("link %q is missing inertial data carried by other links; provide it for all moving links or none", linkID)
}

// NewKinematicOnlyError returns an error for dynamics queries against a
// chain built without inertial data.
func NewKinematicOnlyError(name string) error {
	return errors.Errorf("chain %q was built without inertial data and cannot answer dynamics queries", name)
}
