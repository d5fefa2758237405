// FILE: lixenwraith/logship/errors.go
package logship

import "errors"

var (
	// ErrNilConfig is returned by New when no configuration is supplied
	ErrNilConfig = errors.New("logship: configuration cannot be nil")

	// ErrShutdown is returned by Flush after Shutdown has completed
	ErrShutdown = errors.New("logship: logger is shut down")
)

// maxTraceDepth bounds the frames captured by WithStack
const maxTraceDepth = 10

// tracedError pairs an error with the call trace captured at WithStack
type tracedError struct {
	err   error
	trace string
}

// WithStack attaches the caller's function trace to err.
// Logger.Error renders such errors as "message: trace".
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	const skipTrace = 2 // getTrace -> WithStack
	return &tracedError{err: err, trace: getTrace(maxTraceDepth, skipTrace)}
}

func (e *tracedError) Error() string { return e.err.Error() }

func (e *tracedError) Unwrap() error { return e.err }

// StackTrace returns the captured trace in caller -> callee order
func (e *tracedError) StackTrace() string { return e.trace }
