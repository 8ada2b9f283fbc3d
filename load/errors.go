package load

import "fmt"

// ShortWriteError indicates the transport accepted fewer bytes than a
// full frame.
type ShortWriteError struct {
	Written  int
	Expected int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("short write: %d bytes written for frame of %d", e.Written, e.Expected)
}

// ShortReadError indicates the transport returned fewer bytes than a
// full frame before its deadline. This is how a transport timeout
// surfaces in the session.
type ShortReadError struct {
	Received int
	Expected int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read: %d bytes received for frame of %d", e.Received, e.Expected)
}

// RetryExhaustedError indicates a status read failed on the initial
// attempt and on every retry. It wraps the last underlying failure.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry count exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}
