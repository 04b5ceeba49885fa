// Package hook holds the types shared by the dispatch core: the request
// contract a host server implements, dispatch results and the signals
// handler code uses to stop a chain.
package hook

import (
	"io"
	"net/http"
)

// Request is the host server's view of one in-flight request.
//
// Write sends body bytes to the client; implementations send the response
// header first if SendHeader has not been called yet.
type Request interface {
	io.Reader
	io.Writer

	Status() int
	SetStatus(code int)
	SetContentType(ct string)
	// Header is the outgoing header map.
	Header() http.Header
	SendHeader() error
	HeadersSent() bool

	// Config maps handler type -> whitespace separated handler chain.
	Config() map[string]string
	// Options is the raw option mapping (autoreload, debug, rootpkg, searchpath).
	Options() map[string]string

	Incoming() *http.Request
	PathInfo() string
}

// HandlerFunc is the signature of application handler code.
type HandlerFunc func(req Request) (Result, error)

// ReadCanceler is implemented by requests whose body reads can be
// interrupted. CancelRead makes a pending and every later Read fail.
type ReadCanceler interface {
	CancelRead() error
}
