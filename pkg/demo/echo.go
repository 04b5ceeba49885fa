package demo

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
)

type echoMessage struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

func initEcho(m *module.Module) error {
	m.Sub("json").Func("reply", func(req hook.Request) (hook.Result, error) {
		var msg echoMessage
		if err := codec.Decode(codec.JSONStrict, req, &msg); err != nil {
			return hook.OK, hook.AbortWith(hook.Result(http.StatusBadRequest), http.StatusBadRequest)
		}
		msg.Count = len(msg.Message)
		out, err := codec.JSONStrict.Marshal(msg)
		if err != nil {
			return hook.InternalServerError, err
		}
		req.SetContentType(codec.JSONStrict.ContentType())
		_, err = req.Write(out)
		return hook.OK, err
	})
	return nil
}
