package module

import (
	"testing"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/hook/hooktest"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Methods
	n int
}

func newCounter() Object {
	c := &counter{}
	c.Methods = Methods{
		"Content": hook.HandlerFunc(func(hook.Request) (hook.Result, error) {
			c.n++
			return hook.Result(c.n), nil
		}),
	}
	return c
}

func testModule() *Module {
	m := &Module{Namespace: NewNamespace(), Name: "app"}
	m.Func("plain", func(hook.Request) (hook.Result, error) { return hook.OK, nil })
	m.Class("Handler", newCounter)
	m.Instance("singleton", Methods{
		"Content": hook.HandlerFunc(func(hook.Request) (hook.Result, error) { return hook.Declined, nil }),
	})
	m.Sub("admin").Func("index", func(hook.Request) (hook.Result, error) { return 204, nil })
	m.Set("version", "1.0")
	return m
}

func call(t *testing.T, tg Target) hook.Result {
	t.Helper()
	res, err := tg.Call(hooktest.NewRequest("GET", "/", ""))
	require.NoError(t, err)
	return res
}

func TestResolveShapes(t *testing.T) {
	m := testModule()

	tg, err := Resolve(m, []string{"plain"})
	require.NoError(t, err)
	require.Equal(t, TargetFunc, tg.Kind)
	require.Equal(t, hook.OK, call(t, tg))

	tg, err = Resolve(m, []string{"Handler", "Content"})
	require.NoError(t, err)
	require.Equal(t, TargetClassMethod, tg.Kind)
	require.Equal(t, hook.Result(1), call(t, tg))

	tg, err = Resolve(m, []string{"singleton", "Content"})
	require.NoError(t, err)
	require.Equal(t, TargetInstanceMethod, tg.Kind)
	require.Equal(t, hook.Declined, call(t, tg))

	tg, err = Resolve(m, []string{"admin", "index"})
	require.NoError(t, err)
	require.Equal(t, TargetFunc, tg.Kind)
	require.Equal(t, hook.Result(204), call(t, tg))
}

func TestResolveClassMethodIsIdempotent(t *testing.T) {
	m := testModule()
	for i := 0; i < 2; i++ {
		tg, err := Resolve(m, []string{"Handler", "Content"})
		require.NoError(t, err)
		// every resolution builds a fresh instance
		require.Equal(t, hook.Result(1), call(t, tg))
	}
}

func TestResolveErrors(t *testing.T) {
	m := testModule()
	for _, path := range [][]string{
		{"missing"},
		{"Handler"},
		{"Handler", "Missing"},
		{"plain", "x"},
		{"version"},
		{"admin", "Handler", "Content"},
		{},
	} {
		_, err := Resolve(m, path)
		var re *ResolveError
		require.ErrorAs(t, err, &re, "path %v", path)
		require.Equal(t, "app", re.Module)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", Definition{Init: func(*Module) error { return nil }})
	r.Register("a", Definition{Source: "a.txt", Init: func(*Module) error { return nil }})

	d, ok := r.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "a.txt", d.Source)
	_, ok = r.Lookup("c")
	require.False(t, ok)
	require.Equal(t, []string{"a", "b"}, r.Names())

	require.Panics(t, func() { r.Register("a", Definition{Init: func(*Module) error { return nil }}) })
	require.Panics(t, func() { r.Register("", Definition{Init: func(*Module) error { return nil }}) })
	require.Panics(t, func() { r.Register("d", Definition{}) })
}
