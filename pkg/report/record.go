// Package report turns failures that escaped handler code into either a
// diagnostic HTML page for the client or error log lines.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// FailureRecord is a failure captured where it crossed a handler boundary.
type FailureRecord struct {
	Kind        string
	Value       string
	Trace       []string
	HandlerType string
	HandlerName string
	Err         error
}

// FromError captures err. A *hook.Fatal anywhere in the chain supplies the
// kind, value and trace it already carries.
func FromError(err error) FailureRecord {
	var fatal *hook.Fatal
	if errors.As(err, &fatal) {
		return FailureRecord{
			Kind:  fatal.Kind,
			Value: fatal.Value,
			Trace: append([]string(nil), fatal.Trace...),
			Err:   err,
		}
	}
	rec := FailureRecord{Kind: fmt.Sprintf("%T", err), Value: err.Error(), Err: err}
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		rec.Trace = append(rec.Trace, fmt.Sprintf("caused by %T: %s", e, e.Error()))
	}
	return rec
}

// FromPanic captures a recovered panic value and the stack it was raised on.
func FromPanic(v any, stack []byte) FailureRecord {
	rec := FailureRecord{Kind: "panic", Trace: splitLines(string(stack))}
	if err, ok := v.(error); ok {
		rec.Value = err.Error()
		rec.Err = err
	} else {
		rec.Value = fmt.Sprint(v)
		rec.Err = errors.New(rec.Value)
	}
	return rec
}

// Lines formats the record the way it is shown and logged: the kind and
// value first, then one line per trace entry.
func (r FailureRecord) Lines() []string {
	out := make([]string, 0, len(r.Trace)+1)
	out = append(out, r.Kind+": "+r.Value)
	for _, t := range r.Trace {
		out = append(out, splitLines(t)...)
	}
	return out
}

// WriteFailure reports whether the failure happened while writing the
// response to the client.
func (r FailureRecord) WriteFailure() bool {
	var we *hook.WriteError
	if r.Err != nil && errors.As(r.Err, &we) {
		return true
	}
	return hook.IsWriteFailure(r.Value)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \r\t")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
