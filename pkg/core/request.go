package core

import (
	"io"
	"net/http"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// httpRequest presents one net/http exchange as a hook.Request. It lives
// for the whole request so every phase sees the same response state.
type httpRequest struct {
	w http.ResponseWriter
	r *http.Request

	status      int
	contentType string
	sent        bool

	config   map[string]string
	options  map[string]string
	pathInfo string
}

var (
	_ hook.Request      = (*httpRequest)(nil)
	_ hook.ReadCanceler = (*httpRequest)(nil)
)

func newHTTPRequest(w http.ResponseWriter, r *http.Request, config, options map[string]string, pathInfo string) *httpRequest {
	return &httpRequest{
		w:        w,
		r:        r,
		status:   http.StatusOK,
		config:   config,
		options:  options,
		pathInfo: pathInfo,
	}
}

func (h *httpRequest) Read(p []byte) (int, error) {
	if h.r.Body == nil {
		return 0, io.EOF
	}
	return h.r.Body.Read(p)
}

// CancelRead expires the connection's read deadline, which unblocks a body
// read in progress. The server resets the deadline before the next request.
func (h *httpRequest) CancelRead() error {
	return http.NewResponseController(h.w).SetReadDeadline(time.Now())
}

func (h *httpRequest) Write(p []byte) (int, error) {
	if !h.sent {
		if err := h.SendHeader(); err != nil {
			return 0, err
		}
	}
	n, err := h.w.Write(p)
	if err != nil {
		return n, &hook.WriteError{Err: err}
	}
	return n, nil
}

func (h *httpRequest) Status() int { return h.status }

// SetStatus has no effect once headers are sent.
func (h *httpRequest) SetStatus(code int) {
	if !h.sent {
		h.status = code
	}
}

func (h *httpRequest) SetContentType(ct string) { h.contentType = ct }
func (h *httpRequest) Header() http.Header      { return h.w.Header() }
func (h *httpRequest) HeadersSent() bool        { return h.sent }

func (h *httpRequest) SendHeader() error {
	if h.sent {
		return nil
	}
	if h.contentType != "" {
		h.w.Header().Set("Content-Type", h.contentType)
	}
	h.w.WriteHeader(h.status)
	h.sent = true
	return nil
}

func (h *httpRequest) Config() map[string]string  { return h.config }
func (h *httpRequest) Options() map[string]string { return h.options }
func (h *httpRequest) Incoming() *http.Request    { return h.r }
func (h *httpRequest) PathInfo() string           { return h.pathInfo }

// fail ends the response with status unless handler code already started it.
func (h *httpRequest) fail(res hook.Result) {
	if h.sent {
		return
	}
	status := int(res)
	if !res.IsHTTPStatus() {
		status = http.StatusInternalServerError
	}
	h.sent = true
	http.Error(h.w, http.StatusText(status), status)
}
