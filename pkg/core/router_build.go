package core

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	manifest "github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
)

func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())
	r.NotFound(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if d.Log != nil {
			d.Log.Debug("no location matched", zap.String("uri", req.URL.Path))
		}
		http.NotFound(w, req)
	}))

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}
	if d.Loader != nil && hook.ParseOptions(cfg.Options.Strings()).Debug {
		r.Get("/modules", modulesHandler(d.Loader))
	}

	for _, loc := range cfg.Locations {
		h := withDeadline(locationHandler(loc, cfg.Options, d), loc.Policy)
		if loc.LogBody {
			logger.AddBodyLogPaths(loc.Path)
		}

		for _, pattern := range patterns(loc.Path) {
			for _, m := range loc.Methods {
				switch m {
				case http.MethodGet:
					r.Get(pattern, h)
				case http.MethodPost:
					r.Post(pattern, h)
				case http.MethodPut:
					r.Put(pattern, h)
				case http.MethodDelete:
					r.Delete(pattern, h)
				default:
					r.Handle(m, pattern, h)
				}
			}
		}
	}
	return r.Mux()
}

// patterns mounts a location on its own path and everything below it.
func patterns(p string) []string {
	if p == "/" {
		return []string{"/*"}
	}
	return []string{p, p + "/*"}
}
