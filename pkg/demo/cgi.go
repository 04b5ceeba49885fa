package demo

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/cgi"
	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
)

func initCGI(m *module.Module) error {
	// env prints the CGI environment the way a classic test script does.
	m.Func("env", cgi.Handler(func(_ hook.Request, _ *cgi.Session) (hook.Result, error) {
		env := os.Environ()
		sort.Strings(env)
		fmt.Print("Content-Type: text/plain\n\n")
		for _, kv := range env {
			fmt.Println(kv)
		}
		return hook.OK, nil
	}))

	// lines counts the request body lines read from stdin.
	m.Func("lines", cgi.Handler(func(_ hook.Request, s *cgi.Session) (hook.Result, error) {
		lines, err := s.Stdin().ReadLines()
		if err != nil {
			return hook.InternalServerError, err
		}
		fmt.Fprintf(s.Stdout(), "Status: 200 OK\nContent-Type: text/plain\nX-Line-Count: %d\n\n", len(lines))
		for i, l := range lines {
			fmt.Fprintf(s.Stdout(), "%d: %s\n", i+1, strings.TrimRight(string(l), "\r\n"))
		}
		return hook.OK, nil
	}))
	return nil
}
