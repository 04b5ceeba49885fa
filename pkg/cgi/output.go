package cgi

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// ErrIncompleteHeaders is returned when output ended before the blank line
// that terminates the CGI header block.
var ErrIncompleteHeaders = errors.New("cgi: output ended inside the header block")

// OutputStream turns CGI-style output (header lines, a blank line, then the
// body) into calls on a hook.Request.
type OutputStream struct {
	req hook.Request

	mu      sync.Mutex
	headers *bytebufferpool.ByteBuffer
	sent    bool
	pos     int64
	err     error
}

func NewOutputStream(req hook.Request) *OutputStream {
	return &OutputStream{req: req, headers: bytebufferpool.Get()}
}

func (out *OutputStream) Write(p []byte) (int, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.err != nil {
		return 0, out.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if out.sent {
		n, err := out.req.Write(p)
		out.pos += int64(n)
		if err != nil {
			out.err = &hook.WriteError{Err: err}
			return n, out.err
		}
		return n, nil
	}

	_, _ = out.headers.Write(p)
	head, body, ok := splitHeaders(out.headers.B)
	if !ok {
		out.pos += int64(len(p))
		return len(p), nil
	}
	if err := out.flushHeaders(head, body); err != nil {
		out.err = err
		return 0, err
	}
	out.pos += int64(len(p))
	return len(p), nil
}

func (out *OutputStream) flushHeaders(head, body []byte) error {
	defer out.release()
	if err := out.applyHeaders(head); err != nil {
		return err
	}
	if err := out.req.SendHeader(); err != nil {
		return &hook.WriteError{Err: err}
	}
	out.sent = true
	if len(body) == 0 {
		return nil
	}
	if _, err := out.req.Write(body); err != nil {
		return &hook.WriteError{Err: err}
	}
	return nil
}

func (out *OutputStream) applyHeaders(head []byte) error {
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("cgi: malformed header line %q", line)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		switch strings.ToLower(name) {
		case "status":
			fields := strings.Fields(value)
			if len(fields) == 0 {
				return fmt.Errorf("cgi: empty Status header")
			}
			code, err := strconv.Atoi(fields[0])
			if err != nil {
				return fmt.Errorf("cgi: bad Status header %q: %w", value, err)
			}
			out.req.SetStatus(code)
		case "content-type":
			out.req.SetContentType(value)
		default:
			out.req.Header().Add(name, value)
		}
	}
	return nil
}

func (out *OutputStream) release() {
	if out.headers != nil {
		bytebufferpool.Put(out.headers)
		out.headers = nil
	}
}

// Close reports a header block that never terminated, and any earlier
// failure. It does not close the request.
func (out *OutputStream) Close() error {
	out.mu.Lock()
	defer out.mu.Unlock()
	if out.err != nil {
		return out.err
	}
	if !out.sent && out.headers != nil && out.headers.Len() > 0 {
		out.release()
		return ErrIncompleteHeaders
	}
	out.release()
	return nil
}

// HeadersSent reports whether the header block was sent. Once true it stays
// true.
func (out *OutputStream) HeadersSent() bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.sent
}

// Tell reports how many bytes were accepted, headers included.
func (out *OutputStream) Tell() int64 {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.pos
}

// splitHeaders finds the earliest blank line, bare or CRLF.
func splitHeaders(b []byte) (head, body []byte, ok bool) {
	lf := bytes.Index(b, []byte("\n\n"))
	crlf := bytes.Index(b, []byte("\r\n\r\n"))
	switch {
	case lf < 0 && crlf < 0:
		return nil, nil, false
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return b[:crlf], b[crlf+4:], true
	default:
		return b[:lf], b[lf+2:], true
	}
}
