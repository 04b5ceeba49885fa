package cgi

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// processMu serialises sessions: environment, stdin, stdout and args are
// process-wide, so only one request may own them at a time.
var processMu sync.Mutex

// Session owns the process image for one request. Handler code running
// inside it sees the request's CGI environment, reads the body from
// os.Stdin and writes a CGI response to os.Stdout.
//
// The request body belongs to stdin for the life of the session; handler
// code must not also read the request directly. A request whose body reads
// can block should implement hook.ReadCanceler so End can stop the stdin
// pump.
//
// Sessions do not nest: calling Begin from inside a session deadlocks.
type Session struct {
	req hook.Request
	in  *InputStream
	out *OutputStream

	env    []string
	stdin  *os.File
	stdout *os.File
	args   []string

	stdinR, stdoutW *os.File
	fed             chan struct{}
	pumped          chan error

	endOnce sync.Once
	endErr  error
}

// Begin takes the process-wide CGI lock and swaps in the request's process
// image. Every Begin must be matched by End; Run and Handler do that.
func Begin(req hook.Request) (*Session, error) {
	processMu.Lock()

	s := &Session{
		req:    req,
		out:    NewOutputStream(req),
		env:    os.Environ(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		args:   os.Args,
		fed:    make(chan struct{}),
		pumped: make(chan error, 1),
	}
	if err := s.bindStreams(); err != nil {
		processMu.Unlock()
		return nil, err
	}

	os.Clearenv()
	for k, v := range Env(req) {
		_ = os.Setenv(k, v)
	}
	os.Stdin = s.stdinR
	os.Stdout = s.stdoutW
	os.Args = []string{}
	return s, nil
}

func (s *Session) bindStreams() error {
	inR, inW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("cgi: stdin pipe: %w", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		inR.Close()
		inW.Close()
		return fmt.Errorf("cgi: stdout pipe: %w", err)
	}
	s.stdinR, s.stdoutW = inR, outW
	s.in = NewInputStream(inR)

	go func() {
		defer close(s.fed)
		_, _ = io.Copy(inW, s.req)
		inW.Close()
	}()
	go func() {
		_, err := io.Copy(s.out, outR)
		if err != nil {
			// keep draining so writers never block on a full pipe
			_, _ = io.Copy(io.Discard, outR)
		}
		outR.Close()
		s.pumped <- err
	}()
	return nil
}

// Stdin reads the request body. It shares os.Stdin's pipe; mixing it with
// direct os.Stdin reads interleaves unpredictably.
func (s *Session) Stdin() *InputStream { return s.in }

// Stdout is the writer bound to os.Stdout.
func (s *Session) Stdout() io.Writer { return s.stdoutW }

// HeadersSent is final only after End.
func (s *Session) HeadersSent() bool { return s.out.HeadersSent() }

// End flushes pending output, restores the saved process image and releases
// the lock. It is safe to call more than once; later calls return the first
// result.
func (s *Session) End() error {
	s.endOnce.Do(func() {
		defer processMu.Unlock()

		s.stdoutW.Close()
		pumpErr := <-s.pumped
		s.stopStdin()

		os.Stdin = s.stdin
		os.Stdout = s.stdout
		os.Args = s.args
		restoreEnv(s.env)

		s.endErr = errors.Join(pumpErr, s.out.Close())
	})
	return s.endErr
}

// stopStdin closes the read end so a pump blocked on a full pipe fails its
// write, cancels a pump blocked reading the request, and waits for it. The
// request is never read once End returns.
func (s *Session) stopStdin() {
	s.stdinR.Close()
	select {
	case <-s.fed:
		return
	default:
	}
	if rc, ok := s.req.(hook.ReadCanceler); ok {
		_ = rc.CancelRead()
	}
	<-s.fed
}

func restoreEnv(env []string) {
	os.Clearenv()
	for _, kv := range env {
		// skip the leading '=' of Windows per-drive entries
		i := strings.IndexByte(kv[min(1, len(kv)):], '=')
		if i < 0 {
			continue
		}
		i += min(1, len(kv))
		_ = os.Setenv(kv[:i], kv[i+1:])
	}
}

// Run executes fn inside a session and always ends it, panics included.
// The first error wins: fn's, then End's.
func Run(req hook.Request, fn func(s *Session) error) (err error) {
	s, err := Begin(req)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := s.End(); err == nil {
			err = endErr
		}
	}()
	return fn(s)
}

// Handler adapts CGI-style handler code to a hook.HandlerFunc.
func Handler(fn func(req hook.Request, s *Session) (hook.Result, error)) hook.HandlerFunc {
	return func(req hook.Request) (hook.Result, error) {
		var res hook.Result
		err := Run(req, func(s *Session) error {
			var ferr error
			res, ferr = fn(req, s)
			return ferr
		})
		return res, err
	}
}
