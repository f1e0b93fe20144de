package luahook

import "errors"

// Errors returned by hook calls.
var (
	// ErrClosed is returned when calling a hook after Close.
	ErrClosed = errors.New("lua hooks are closed")

	// ErrTimeout is returned when a hook runs longer than its timeout.
	ErrTimeout = errors.New("lua hook timed out")
)

// ResultError reports a hook return value of the wrong shape.
type ResultError struct {
	Hook string
	Msg  string
}

func (e *ResultError) Error() string {
	return e.Hook + ": " + e.Msg
}
