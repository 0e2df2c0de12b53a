package health

import "errors"

// Sentinel errors for the health package.
var (
	// ErrCheckFailed is returned by the good-to-go probe when it fails.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout wraps errors from checks that ran past the timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked is reported when a check panics.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrNoCheckFunc is reported for checks registered without a function.
	ErrNoCheckFunc = errors.New("health: check has no function")
)
