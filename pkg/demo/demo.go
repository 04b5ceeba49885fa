// Package demo registers the example handler modules served by the sample
// manifest. Importing it for side effects fills module.Default.
package demo

import "github.com/joeydtaylor/steeze-hooks/pkg/module"

func init() { Register(module.Default) }

// Register adds the demo modules to reg.
func Register(reg *module.Registry) {
	reg.Register("hello", module.Definition{Source: "hello.tmpl", Init: initHello})
	reg.Register("gate", module.Definition{Init: initGate})
	reg.Register("echo", module.Definition{Init: initEcho})
	reg.Register("cgi", module.Definition{Init: initCGI})
}
