package demo

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
)

func initGate(m *module.Module) error {
	// check refuses requests carrying X-Block and declines otherwise, so the
	// next phase decides.
	m.Func("check", func(req hook.Request) (hook.Result, error) {
		if req.Incoming().Header.Get("X-Block") != "" {
			return hook.OK, hook.AbortWith(hook.Result(http.StatusForbidden), http.StatusForbidden)
		}
		return hook.Declined, nil
	})
	m.Func("tag", func(req hook.Request) (hook.Result, error) {
		req.Header().Set("X-Handled-By", "steeze-hooks")
		return hook.OK, nil
	})
	return nil
}
