package loader

import "fmt"

// ModuleError reports a module that could not be imported or reloaded.
type ModuleError struct {
	Name string
	Op   string // "import" or "reload"
	Err  error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s module %q: %v", e.Op, e.Name, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }

// SyntaxError is returned by module initialisers that parse a malformed source.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: syntax error: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: syntax error: %s", e.File, e.Msg)
}
