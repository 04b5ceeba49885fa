package core

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
)

type BuildDeps struct {
	LogMW      *logger.Middleware
	Metrics    http.Handler
	Router     httpx.Router
	Dispatcher *Dispatcher
	Loader     *loader.Loader
	Log        *zap.Logger
}
