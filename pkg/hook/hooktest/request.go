// Package hooktest provides an in-memory hook.Request for tests.
package hooktest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// Request records everything handler code does to the response.
type Request struct {
	In        *http.Request
	Body      io.Reader
	Out       bytes.Buffer
	Code      int
	Type      string
	Hdr       http.Header
	SendCalls int
	Cfg       map[string]string
	Opts      map[string]string
	Info      string

	// WriteErr, when set, is returned by every Write.
	WriteErr error
}

var _ hook.Request = (*Request)(nil)

// NewRequest returns a Request for method and target with the given body.
func NewRequest(method, target, body string) *Request {
	return &Request{
		In:   httptest.NewRequest(method, target, strings.NewReader(body)),
		Body: strings.NewReader(body),
		Hdr:  http.Header{},
		Cfg:  map[string]string{},
		Opts: map[string]string{},
	}
}

func (r *Request) Read(p []byte) (int, error) {
	if r.Body == nil {
		return 0, io.EOF
	}
	return r.Body.Read(p)
}

func (r *Request) Write(p []byte) (int, error) {
	if r.WriteErr != nil {
		return 0, r.WriteErr
	}
	if r.SendCalls == 0 {
		_ = r.SendHeader()
	}
	return r.Out.Write(p)
}

func (r *Request) Status() int {
	if r.Code == 0 {
		return http.StatusOK
	}
	return r.Code
}

func (r *Request) SetStatus(code int)         { r.Code = code }
func (r *Request) SetContentType(ct string)   { r.Type = ct }
func (r *Request) Header() http.Header        { return r.Hdr }
func (r *Request) HeadersSent() bool          { return r.SendCalls > 0 }
func (r *Request) Config() map[string]string  { return r.Cfg }
func (r *Request) Options() map[string]string { return r.Opts }
func (r *Request) Incoming() *http.Request    { return r.In }
func (r *Request) PathInfo() string           { return r.Info }

func (r *Request) SendHeader() error {
	r.SendCalls++
	return nil
}
