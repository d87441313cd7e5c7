package referenceframe

import "github.com/pkg/errors"

// OOBErrString is contained in the error returned when a frame is evaluated outside of its joint
// limits. Transform still returns the out-of-bounds pose alongside this error so that callers
// doing defensive evaluation (e.g. IK partial steps) can use the result; see
// ComputeOOBPosition and the chain-form FK clamping behavior.
const OOBErrString = "joint value out of bounds"

// NewIncorrectDoFError is returned when an input vector's length does not match a frame's DoF.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs %d does not match frame DoF %d", actual, expected)
}

// NewOutOfBoundsError reports that a single joint value violates its limit.
func NewOutOfBoundsError(jointName string, value float64, limit Limit) error {
	return errors.Errorf("%s: value %f %s [%f, %f]", jointName, value, OOBErrString, limit.Min, limit.Max)
}

// NewFrameMissingError is returned when a named frame cannot be found in a tree/frame system.
func NewFrameMissingError(name string) error {
	return errors.Errorf("frame with name %q not found", name)
}

// NewDuplicateGeometryNameError is returned when a WorldState (or collision manager) is given two
// geometries with the same name.
func NewDuplicateGeometryNameError(name string) error {
	return errors.Errorf("geometry named %q already exists", name)
}

// Sentinel error kinds named in the error-handling design. These are plain sentinel errors
// (wrapped with context via errors.Wrap at the call site) rather than custom types, matching the
// teacher's errIKSolve-style globals.
var (
	// ErrInvalidModel covers joint/link references missing from a tree, or an active-joint count
	// mismatch against a supplied input vector.
	ErrInvalidModel = errors.New("invalid kinematic model")
	// ErrOutOfLimits is returned by callers (principally planners) that must not return
	// configurations outside of joint limits.
	ErrOutOfLimits = errors.New("configuration violates joint limits")
)
