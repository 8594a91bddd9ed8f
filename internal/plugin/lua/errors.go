package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past the execution timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNotFunction is returned when a called global is missing or not a function.
	ErrNotFunction = errors.New("lua global is not a function")

	// ErrBadReturn is returned when a script returns something that is not a key.
	ErrBadReturn = errors.New("lua function returned an invalid key")
)
