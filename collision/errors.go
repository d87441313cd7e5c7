package collision

import "github.com/pkg/errors"

// Sentinel error kinds for the collision manager, matching the teacher's convention of plain
// package-level sentinels rather than custom error types.
var (
	// ErrDuplicateName is returned by AddObject when the name is already registered.
	ErrDuplicateName = errors.New("collision: object name already registered")
	// ErrUnknownName is returned by operations referencing a name that was never added.
	ErrUnknownName = errors.New("collision: object name not registered")
)
