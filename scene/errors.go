package scene

import "github.com/pkg/errors"

// Sentinel error kinds for the scene manager, matching the teacher's plain package-level
// sentinel convention rather than custom error types.
var (
	// ErrDuplicateObject is returned by AddObject when the name is already registered.
	ErrDuplicateObject = errors.New("scene: object name already registered")
	// ErrUnknownObject is returned by operations referencing an object name never added.
	ErrUnknownObject = errors.New("scene: object name not registered")
	// ErrNoGripper is returned by gripper operations on a scene with no gripper attached.
	ErrNoGripper = errors.New("scene: robot has no gripper")
	// ErrAlreadyHolding is returned by AttachObjectOnGripper when the gripper already holds
	// something.
	ErrAlreadyHolding = errors.New("scene: gripper is already holding an object")
	// ErrNotAttached is returned by DetachObjectFromGripper when nothing is attached.
	ErrNotAttached = errors.New("scene: no object attached to gripper")
	// ErrIKUnconverged is returned by SetRobotEEFPose when the solver exhausts its iterations
	// without meeting tolerance.
	ErrIKUnconverged = errors.New("scene: IK did not converge on target pose")
)
