package pipeline

import "errors"

// abortError marks a step failure that ends the whole batch rather than
// just the current address.
type abortError struct {
	err error
}

func (e *abortError) Error() string {
	return e.err.Error()
}

func (e *abortError) Unwrap() error {
	return e.err
}

// Abort wraps err so that BatchRunner stops after the current address.
// Steps use it for failures no later address can avoid, such as an
// output directory that cannot be written.
func Abort(err error) error {
	if err == nil {
		return nil
	}
	return &abortError{err: err}
}

// IsAbort reports whether err, or any error it wraps, came from Abort.
func IsAbort(err error) bool {
	var ae *abortError
	return errors.As(err, &ae)
}
