package cgi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/hook/hooktest"
)

func TestEnv(t *testing.T) {
	req := hooktest.NewRequest("POST", "/app/run/extra/bits?x=1&y=2", "a=b")
	req.Info = "/extra/bits"
	req.In.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.In.Header.Set("X-Trace-Id", "abc")
	req.In.Header.Set("Authorization", "Bearer t")
	req.In.Header.Set("Proxy", "evil")

	env := Env(req)
	assert.Equal(t, "POST", env["REQUEST_METHOD"])
	assert.Equal(t, "/app/run/extra/bits?x=1&y=2", env["REQUEST_URI"])
	assert.Equal(t, "x=1&y=2", env["QUERY_STRING"])
	assert.Equal(t, "/extra/bits", env["PATH_INFO"])
	assert.Equal(t, "/app/run", env["SCRIPT_NAME"])
	assert.Equal(t, "CGI/1.1", env["GATEWAY_INTERFACE"])
	assert.Equal(t, "HTTP/1.1", env["SERVER_PROTOCOL"])
	assert.Equal(t, "example.com", env["SERVER_NAME"])
	assert.Equal(t, "80", env["SERVER_PORT"])
	assert.Equal(t, "192.0.2.1", env["REMOTE_ADDR"])
	assert.Equal(t, "1234", env["REMOTE_PORT"])
	assert.Equal(t, "application/x-www-form-urlencoded", env["CONTENT_TYPE"])
	assert.Equal(t, "3", env["CONTENT_LENGTH"])
	assert.Equal(t, "abc", env["HTTP_X_TRACE_ID"])
	assert.Equal(t, "Bearer t", env["HTTP_AUTHORIZATION"])
	assert.NotContains(t, env, "HTTP_PROXY")
	assert.NotContains(t, env, "HTTP_CONTENT_TYPE")
	assert.NotContains(t, env, "HTTPS")
}

func TestEnvWithoutPathInfo(t *testing.T) {
	req := hooktest.NewRequest("GET", "/app/run", "")
	env := Env(req)
	assert.Equal(t, "/app/run", env["SCRIPT_NAME"])
	assert.Equal(t, "", env["PATH_INFO"])
	assert.NotContains(t, env, "CONTENT_LENGTH")
}

func TestOutputOneShot(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	n, err := io.WriteString(out, "Content-Type: text/plain\nX-A: 1\nX-A: 2\n\nhello")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	assert.Equal(t, "text/plain", req.Type)
	assert.Equal(t, []string{"1", "2"}, req.Hdr.Values("X-A"))
	assert.Equal(t, 1, req.SendCalls)
	assert.Equal(t, "hello", req.Out.String())
	assert.True(t, out.HeadersSent())
	assert.EqualValues(t, 45, out.Tell())
	require.NoError(t, out.Close())
}

func TestOutputSplitWrites(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	for _, chunk := range []string{"Content-", "Type: text/html\r\n", "\r", "\n<p>", "hi</p>"} {
		_, err := io.WriteString(out, chunk)
		require.NoError(t, err)
	}

	assert.Equal(t, "text/html", req.Type)
	assert.Equal(t, 1, req.SendCalls)
	assert.Equal(t, "<p>hi</p>", req.Out.String())
	require.NoError(t, out.Close())
}

func TestOutputHeadersOnlyWritesNoBody(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "Status: 204\n\n")
	require.NoError(t, err)
	assert.Equal(t, 204, req.Code)
	assert.Equal(t, 1, req.SendCalls)
	assert.Zero(t, req.Out.Len())
}

func TestOutputStatus(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "Status: 404 Not Found\nContent-Type: text/plain\n\nmissing")
	require.NoError(t, err)
	assert.Equal(t, 404, req.Code)
	assert.Equal(t, "missing", req.Out.String())
}

func TestOutputMalformedHeader(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "no colon here\n\nbody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed header")
	assert.Zero(t, req.SendCalls)

	_, err = io.WriteString(out, "more")
	require.Error(t, err)
	require.Error(t, out.Close())
}

func TestOutputBadStatus(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "Status: abc\n\n")
	require.Error(t, err)
	assert.Zero(t, req.SendCalls)
}

func TestOutputIncompleteHeaders(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "Content-Type: text/plain\n")
	require.NoError(t, err)
	assert.False(t, out.HeadersSent())
	assert.ErrorIs(t, out.Close(), ErrIncompleteHeaders)
}

func TestOutputClientWriteError(t *testing.T) {
	req := hooktest.NewRequest("GET", "/", "")
	req.WriteErr = errors.New("broken pipe")
	out := NewOutputStream(req)

	_, err := io.WriteString(out, "Content-Type: text/plain\n\nbody")
	var we *hook.WriteError
	require.ErrorAs(t, err, &we)
	assert.True(t, hook.IsWriteFailure(err.Error()))
}

func TestInputInterleavedReads(t *testing.T) {
	req := hooktest.NewRequest("POST", "/", "line1\nline2\nrest of body")
	in := NewInputStream(req)

	line, err := in.ReadLine(-1)
	require.NoError(t, err)
	assert.Equal(t, "line1\n", string(line))

	b, err := in.ReadN(3)
	require.NoError(t, err)
	assert.Equal(t, "lin", string(b))

	line, err = in.ReadLine(2)
	require.NoError(t, err)
	assert.Equal(t, "e2", string(line))

	line, err = in.ReadLine(-1)
	require.NoError(t, err)
	assert.Equal(t, "\n", string(line))
	assert.EqualValues(t, 12, in.Tell())

	rest, err := in.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "rest of body", string(rest))
	assert.EqualValues(t, 24, in.Tell())

	_, err = in.ReadN(1)
	assert.ErrorIs(t, err, io.EOF)
	_, err = in.ReadLine(-1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestInputReadNShortAtEOF(t *testing.T) {
	in := NewInputStream(hooktest.NewRequest("POST", "/", "abc"))
	b, err := in.ReadN(10)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}

func TestInputReadLines(t *testing.T) {
	in := NewInputStream(hooktest.NewRequest("POST", "/", "a\nb\nc"))
	lines, err := in.ReadLines()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "a\n", string(lines[0]))
	assert.Equal(t, "b\n", string(lines[1]))
	assert.Equal(t, "c", string(lines[2]))
}

func TestRunBindsProcessImage(t *testing.T) {
	t.Setenv("STEEZE_CGI_MARKER", "kept")
	origOut, origIn, origArgs := os.Stdout, os.Stdin, os.Args

	req := hooktest.NewRequest("POST", "/cgi/echo", "ping")
	var seen struct {
		method, marker string
		args           int
		body           string
	}
	err := Run(req, func(s *Session) error {
		seen.method = os.Getenv("REQUEST_METHOD")
		seen.marker = os.Getenv("STEEZE_CGI_MARKER")
		seen.args = len(os.Args)
		body, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		seen.body = string(body)
		_, err = fmt.Fprintf(os.Stdout, "Content-Type: text/plain\n\necho %s", body)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", seen.method)
	assert.Empty(t, seen.marker)
	assert.Zero(t, seen.args)
	assert.Equal(t, "ping", seen.body)

	assert.Equal(t, "text/plain", req.Type)
	assert.Equal(t, "echo ping", req.Out.String())

	assert.Same(t, origOut, os.Stdout)
	assert.Same(t, origIn, os.Stdin)
	assert.Equal(t, origArgs, os.Args)
	assert.Equal(t, "kept", os.Getenv("STEEZE_CGI_MARKER"))
	assert.Empty(t, os.Getenv("REQUEST_METHOD"))
}

func TestRunRestoresAfterPanic(t *testing.T) {
	t.Setenv("STEEZE_CGI_MARKER", "kept")
	origOut := os.Stdout

	req := hooktest.NewRequest("GET", "/cgi/boom", "")
	assert.PanicsWithValue(t, "boom", func() {
		_ = Run(req, func(s *Session) error {
			fmt.Fprint(os.Stdout, "Content-Type: text/plain\n\npartial")
			panic("boom")
		})
	})

	assert.Same(t, origOut, os.Stdout)
	assert.Equal(t, "kept", os.Getenv("STEEZE_CGI_MARKER"))
	assert.Equal(t, "partial", req.Out.String())

	// the lock was released
	require.NoError(t, Run(hooktest.NewRequest("GET", "/", ""), func(*Session) error { return nil }))
}

func TestSessionEndIsIdempotent(t *testing.T) {
	s, err := Begin(hooktest.NewRequest("GET", "/", ""))
	require.NoError(t, err)
	_, err = io.WriteString(s.Stdout(), "Content-Type: text/plain\n")
	require.NoError(t, err)

	first := s.End()
	assert.ErrorIs(t, first, ErrIncompleteHeaders)
	assert.Equal(t, first, s.End())
	assert.False(t, s.HeadersSent())
}

func TestHandlerReturnsResult(t *testing.T) {
	h := Handler(func(req hook.Request, s *Session) (hook.Result, error) {
		line, err := s.Stdin().ReadLine(-1)
		if err != nil {
			return hook.InternalServerError, err
		}
		fmt.Fprintf(s.Stdout(), "Status: 201\n\n%s", line)
		return hook.OK, nil
	})

	req := hooktest.NewRequest("POST", "/", "first\nsecond\n")
	res, err := h(req)
	require.NoError(t, err)
	assert.Equal(t, hook.OK, res)
	assert.Equal(t, 201, req.Code)
	assert.Equal(t, "first\n", req.Out.String())
}

// stallingRequest has a body whose reads block until CancelRead.
type stallingRequest struct {
	*hooktest.Request

	once      sync.Once
	cancelled chan struct{}
	reading   atomic.Int32
	cancels   atomic.Int32
}

func (r *stallingRequest) Read(p []byte) (int, error) {
	r.reading.Add(1)
	defer r.reading.Add(-1)
	<-r.cancelled
	return 0, os.ErrDeadlineExceeded
}

func (r *stallingRequest) CancelRead() error {
	r.cancels.Add(1)
	r.once.Do(func() { close(r.cancelled) })
	return nil
}

func TestEndStopsBlockedStdinPump(t *testing.T) {
	req := &stallingRequest{
		Request:   hooktest.NewRequest("POST", "/cgi/idle", ""),
		cancelled: make(chan struct{}),
	}
	err := Run(req, func(s *Session) error {
		_, err := io.WriteString(os.Stdout, "Content-Type: text/plain\n\nno body needed")
		return err
	})
	require.NoError(t, err)

	assert.Zero(t, req.reading.Load())
	assert.EqualValues(t, 1, req.cancels.Load())
	assert.Equal(t, "no body needed", req.Out.String())
}

func TestEndWithUnreadLargeBody(t *testing.T) {
	body := strings.Repeat("x", 1<<20)
	req := hooktest.NewRequest("POST", "/cgi/ignore", body)
	err := Run(req, func(s *Session) error {
		_, err := io.WriteString(os.Stdout, "Status: 204\n\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 204, req.Code)

	// the lock was released
	require.NoError(t, Run(hooktest.NewRequest("GET", "/", ""), func(*Session) error { return nil }))
}
