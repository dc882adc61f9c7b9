package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoDriver is returned when a flow is started without a driver.
	ErrNoDriver = errors.New("prompt: driver is nil")
)
