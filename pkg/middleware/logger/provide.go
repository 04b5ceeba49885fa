package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the access-log middleware and the system logger.
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
	fx.Provide(ProvideLogger),
)

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }
func ProvideLogger() *zap.Logger           { return NewSystemLog("system.log") }
