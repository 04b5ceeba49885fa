package demo

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
)

type helloData struct {
	Name       string
	PathInfo   string
	Generation int
	Visits     int
}

// initHello parses the module's template file. Editing the file makes the
// next request reload the module.
func initHello(m *module.Module) error {
	b, err := os.ReadFile(m.Path)
	if err != nil {
		return err
	}
	tmpl, err := template.New(filepath.Base(m.Path)).Parse(string(b))
	if err != nil {
		return &loader.SyntaxError{File: m.Path, Msg: err.Error()}
	}
	gen := m.Generation

	render := func(req hook.Request, visits int) (hook.Result, error) {
		name := strings.TrimSpace(req.Incoming().URL.Query().Get("name"))
		if name == "" {
			name = "world"
		}
		req.SetContentType("text/html; charset=utf-8")
		err := tmpl.Execute(req, helloData{
			Name:       name,
			PathInfo:   req.PathInfo(),
			Generation: gen,
			Visits:     visits,
		})
		return hook.OK, err
	}

	m.Func("page", func(req hook.Request) (hook.Result, error) { return render(req, 0) })

	// Each resolution builds a fresh Greeter, so its counter never leaks
	// between requests.
	m.Class("Greeter", func() module.Object {
		visits := 0
		return module.Methods{
			"Content": hook.HandlerFunc(func(req hook.Request) (hook.Result, error) {
				visits++
				return render(req, visits)
			}),
		}
	})
	return nil
}
