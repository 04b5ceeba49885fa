package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// TargetKind tells which shape of object path a Target was resolved from.
type TargetKind int

const (
	// TargetFunc is a bare function, module::function.
	TargetFunc TargetKind = iota
	// TargetClassMethod is a method on a freshly built instance, module::Class.method.
	TargetClassMethod
	// TargetInstanceMethod is a method on a pre-built instance, module::instance.method.
	TargetInstanceMethod
)

func (k TargetKind) String() string {
	switch k {
	case TargetFunc:
		return "func"
	case TargetClassMethod:
		return "class-method"
	case TargetInstanceMethod:
		return "instance-method"
	default:
		return "unknown"
	}
}

// Target is a resolved handler.
type Target struct {
	Kind TargetKind
	Path string
	Call hook.HandlerFunc
}

// ResolveError reports that an object path names no callable handler.
type ResolveError struct {
	Module string
	Path   string
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("couldn't resolve object %q in module %q: %s", e.Path, e.Module, e.Reason)
}

var errUnbound = errors.New("unbound method")

// Resolve finds the handler named by path inside m.
//
// The path is first walked as-is. If that fails, or it reaches through a
// class (an unbound method), the longest leading prefix naming a class is
// instantiated with no arguments and the rest of the path is looked up on
// the new instance.
func Resolve(m *Module, path []string) (Target, error) {
	dotted := strings.Join(path, ".")
	fail := func(reason string) (Target, error) {
		return Target{}, &ResolveError{Module: m.Name, Path: dotted, Reason: reason}
	}
	if len(path) == 0 {
		return fail("empty object path")
	}

	v, parent, err := walk(m.Namespace, path)
	if err == nil {
		fn, ok := asHandler(v)
		if !ok {
			return fail(fmt.Sprintf("%T is not a handler", v))
		}
		kind := TargetFunc
		if _, isNS := parent.(*Namespace); !isNS {
			kind = TargetInstanceMethod
		}
		return Target{Kind: kind, Path: dotted, Call: fn}, nil
	}

	for i := len(path) - 1; i >= 1; i-- {
		v, _, err := walk(m.Namespace, path[:i])
		if err != nil {
			continue
		}
		class, ok := v.(Class)
		if !ok {
			continue
		}
		inst := class()
		if inst == nil {
			return fail(fmt.Sprintf("class %s built a nil instance", strings.Join(path[:i], ".")))
		}
		v, _, err = walk(inst, path[i:])
		if err != nil {
			return fail(err.Error())
		}
		fn, ok := asHandler(v)
		if !ok {
			return fail(fmt.Sprintf("%T is not a handler", v))
		}
		return Target{Kind: TargetClassMethod, Path: dotted, Call: fn}, nil
	}
	return fail(err.Error())
}

// walk looks up each segment in turn and returns the final value together
// with the container it was found in.
func walk(start Object, path []string) (v any, parent any, err error) {
	v = start
	for _, seg := range path {
		parent = v
		switch cur := v.(type) {
		case Class:
			return nil, nil, fmt.Errorf("%w %s", errUnbound, seg)
		case Object:
			next, ok := cur.Attr(seg)
			if !ok {
				return nil, nil, fmt.Errorf("no attribute %s", seg)
			}
			v = next
		default:
			return nil, nil, fmt.Errorf("%T has no attribute %s", v, seg)
		}
	}
	return v, parent, nil
}

func asHandler(v any) (hook.HandlerFunc, bool) {
	switch fn := v.(type) {
	case hook.HandlerFunc:
		return fn, fn != nil
	case func(hook.Request) (hook.Result, error):
		return fn, fn != nil
	}
	return nil, false
}
