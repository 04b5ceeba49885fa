package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-hooks/pkg/core"
	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/transport/httpx"
)

// Options allow per-service env keys/defaults without code duplication.
type Options struct {
	Service         string // for logs only
	ManifestPath    string // explicit path, wins over ManifestEnv
	ManifestEnv     string // e.g. "STEEZE_MANIFEST"
	DefaultManifest string // e.g. "manifest.toml"
	ListenAddrEnv   string // e.g. "SERVER_LISTEN_ADDRESS"
	DefaultListen   string // e.g. ":4000"
	TLSCertEnv      string // e.g. "SSL_SERVER_CERTIFICATE"
	TLSKeyEnv       string // e.g. "SSL_SERVER_KEY"
}

// DefaultOptions returns the env keys and defaults of the steeze-hooks binary.
func DefaultOptions() Options {
	return Options{
		Service:         "steeze-hooks",
		ManifestEnv:     "STEEZE_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenAddrEnv:   "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// ---- Manifest ----

func (o Options) manifestPath() string {
	if o.ManifestPath != "" {
		return o.ManifestPath
	}
	return envOr(o.ManifestEnv, o.DefaultManifest)
}

func provideManifest(o Options, log *zap.Logger) (manifest.Config, error) {
	path := o.manifestPath()
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	log.Info("manifest loaded",
		zap.String("path", path),
		zap.Int("locations", len(cfg.Locations)),
		zap.Bool("watch", cfg.Loader.Watch),
	)
	return cfg, nil
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Cfg   manifest.Config
	LogMW *logger.Middleware

	Metrics http.Handler `name:"metrics"`

	R          httpx.Router
	Dispatcher *core.Dispatcher
	Loader     *loader.Loader
	Log        *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	return core.BuildRouter(d.Cfg, core.BuildDeps{
		LogMW:      d.LogMW,
		Metrics:    d.Metrics,
		Router:     d.R,
		Dispatcher: d.Dispatcher,
		Loader:     d.Loader,
		Log:        d.Log,
	})
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Cfg    manifest.Config
	Loader *loader.Loader
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	addr := envOr(d.Opts.ListenAddrEnv, d.Opts.DefaultListen)
	cert := os.Getenv(d.Opts.TLSCertEnv)
	key := os.Getenv(d.Opts.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	watchDone := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Eager module reloads (optional).
			if d.Cfg.Loader.Watch {
				go func() {
					defer close(watchDone)
					if err := d.Loader.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
						d.Logger.Error("module watcher stopped", zap.Error(err))
					}
				}()
			} else {
				close(watchDone)
			}

			// Start HTTP server.
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			watchCancel()
			err := srv.Shutdown(ctx)
			select {
			case <-watchDone:
			case <-ctx.Done():
			}
			return err
		},
	})
}

// ---- Public Fx module ----

func Module(opts Options) fx.Option {
	return fx.Options(
		// Supply options to DI.
		fx.Supply(opts),

		// Manifest, then the dispatch core that depends on it
		fx.Provide(provideManifest),
		bundlefx.Module,

		// Router implementation
		fx.Provide(httpx.NewChi),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		// App lifecycle (module watcher + HTTP server)
		fx.Invoke(registerHooks),
	)
}

// ---- helpers ----

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
