package health

import "errors"

var (
	// ErrCheckFailed marks a result produced by a failed threshold.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a result whose checker did not return in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when no checker has the requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
