package core

import (
	"fmt"
	"strings"
)

// HandlerSpec names one handler: a module and a dotted object path inside
// it, written "module::object.path".
type HandlerSpec struct {
	Module string
	Object string
	Path   []string
}

func (s HandlerSpec) String() string { return s.Module + "::" + s.Object }

// SpecError reports a handler token that cannot be parsed.
type SpecError struct {
	Token  string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("handler %q: %s", e.Token, e.Reason)
}

// ParseHandlerSpec splits token on its first "::".
func ParseHandlerSpec(token string) (HandlerSpec, error) {
	mod, obj, ok := strings.Cut(token, "::")
	if !ok {
		return HandlerSpec{}, &SpecError{Token: token, Reason: `missing "::"`}
	}
	if mod == "" {
		return HandlerSpec{}, &SpecError{Token: token, Reason: "empty module name"}
	}
	if obj == "" {
		return HandlerSpec{}, &SpecError{Token: token, Reason: "empty object path"}
	}
	path := strings.Split(obj, ".")
	for _, seg := range path {
		if seg == "" {
			return HandlerSpec{}, &SpecError{Token: token, Reason: "empty segment in object path"}
		}
	}
	return HandlerSpec{Module: mod, Object: obj, Path: path}, nil
}

// ParseChain parses a whitespace-separated list of handler tokens.
func ParseChain(raw string) ([]HandlerSpec, error) {
	fields := strings.Fields(raw)
	chain := make([]HandlerSpec, 0, len(fields))
	for _, f := range fields {
		s, err := ParseHandlerSpec(f)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
	}
	return chain, nil
}
