package hook

import (
	"fmt"
	"strings"
)

// Abort stops the handler chain on purpose. Code becomes the dispatch
// result; a non-zero Status is set on the response. A zero Status means the
// response is left alone (typically because it already started).
type Abort struct {
	Code   Result
	Status int
}

func (a *Abort) Error() string {
	if a.Status != 0 {
		return fmt.Sprintf("abort: code %s, status %d", a.Code, a.Status)
	}
	return fmt.Sprintf("abort: code %s", a.Code)
}

// AbortWith returns an abort signal carrying code and status.
func AbortWith(code Result, status int) error {
	return &Abort{Code: code, Status: status}
}

// AbortCode returns an abort signal that leaves the response status untouched.
func AbortCode(code Result) error {
	return &Abort{Code: code}
}

// Fatal carries a failure that a lower layer already captured and formatted.
type Fatal struct {
	Kind  string
	Value string
	Trace []string
}

func (f *Fatal) Error() string {
	return f.Kind + ": " + f.Value
}

// WriteError marks a failure to write the response to the client.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write to client: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsWriteFailure matches the message of failures raised while writing the
// response body.
func IsWriteFailure(value string) bool {
	return strings.HasPrefix(strings.ToLower(value), "write")
}
