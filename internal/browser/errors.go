package browser

import "errors"

// Browser errors. Operations wrap them with the selector or address involved,
// so compare with errors.Is.
var (
	// ErrNotStarted is returned by operations on a Browser that was not
	// started or was already stopped.
	ErrNotStarted = errors.New("browser is not running")

	// ErrAlreadyStarted is returned by Start on a running Browser.
	ErrAlreadyStarted = errors.New("browser is already running")

	// ErrTimeout is returned when an operation exceeds its time bound.
	ErrTimeout = errors.New("browser operation timed out")

	// ErrNavigation is returned when Chrome reports a failed page load,
	// such as a refused connection or an unresolvable host.
	ErrNavigation = errors.New("navigation failed")

	// ErrElementNotFound is returned when no element matches a selector.
	ErrElementNotFound = errors.New("element not found")

	// ErrUnknownResourceType is returned for a resource type name Chrome does not know.
	ErrUnknownResourceType = errors.New("unknown resource type")
)
