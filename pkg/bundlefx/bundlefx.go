// bundlefx/bundlefx.go
package bundlefx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/core"
	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-hooks/pkg/report"
)

// Module provides the dispatch core: system logger, module loader, error
// reporter and dispatcher. It needs a manifest.Config in the graph.
var Module = fx.Options(
	logger.Module,
	fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
	fx.Provide(ProvideLoader, ProvideReporter, ProvideDispatcher),
)

func ProvideLoader(cfg manifest.Config, log *zap.Logger) *loader.Loader {
	opts := []loader.Option{
		loader.WithLogger(log.Named("loader")),
		loader.WithObserver(metrics.ObserveModule),
		loader.WithSearchPath(cfg.Loader.SearchPath...),
	}
	if ms := cfg.Loader.WatchIntervalMS; ms > 0 {
		opts = append(opts, loader.WithWatchInterval(time.Duration(ms)*time.Millisecond))
	}
	return loader.New(opts...)
}

func ProvideReporter(log *zap.Logger) *report.Reporter {
	return report.New(log.Named("report"))
}

func ProvideDispatcher(l *loader.Loader, r *report.Reporter, log *zap.Logger) *core.Dispatcher {
	return core.NewDispatcher(l, r, core.WithDispatchLogger(log.Named("dispatch")))
}
