// Package loader imports handler modules from a registry, caches them by
// fully-qualified name and re-executes them when their source file changes.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StatFunc returns the modification time of a file.
type StatFunc func(path string) (time.Time, error)

// Observer is told about every import and reload attempt.
type Observer func(name, op string, err error)

func osStat(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// Loader is a process-wide module cache. It is safe for concurrent use;
// imports and freshness checks for one module name never run concurrently.
type Loader struct {
	reg     *module.Registry
	stat    StatFunc
	log     *zap.Logger
	observe Observer

	mu         sync.RWMutex
	modules    map[string]*module.Module
	searchPath []string

	flight singleflight.Group

	watchInterval time.Duration
}

type Option func(*Loader)

func WithRegistry(r *module.Registry) Option { return func(l *Loader) { l.reg = r } }
func WithStat(fn StatFunc) Option            { return func(l *Loader) { l.stat = fn } }
func WithLogger(lg *zap.Logger) Option       { return func(l *Loader) { l.log = lg } }
func WithObserver(fn Observer) Option        { return func(l *Loader) { l.observe = fn } }

// WithSearchPath seeds the directories module sources are looked up in.
func WithSearchPath(dirs ...string) Option {
	return func(l *Loader) { l.searchPath = append([]string(nil), dirs...) }
}

func WithWatchInterval(d time.Duration) Option {
	return func(l *Loader) { l.watchInterval = d }
}

// New returns a Loader backed by module.Default unless WithRegistry is given.
func New(opts ...Option) *Loader {
	l := &Loader{
		reg:           module.Default,
		stat:          osStat,
		log:           zap.NewNop(),
		observe:       func(string, string, error) {},
		modules:       map[string]*module.Module{},
		watchInterval: 2 * time.Second,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load returns the module name, importing it on first use and reloading it
// when autoreload is on and its source is newer than the cached copy.
//
// With opts.Debug the *ModuleError is returned as is; otherwise it is logged
// and replaced by an abort with hook.InternalServerError so no paths or
// traces reach the client.
func (l *Loader) Load(name string, opts hook.Options) (*module.Module, error) {
	l.applySearchPath(opts.SearchPath)
	if opts.RootPkg != "" {
		name = opts.RootPkg + "." + name
	}

	m, err := l.load(name, opts.AutoReload)
	if err != nil {
		if opts.Debug {
			return nil, err
		}
		l.log.Warn("module load failed", zap.String("module", name), zap.Error(err))
		return nil, hook.AbortCode(hook.InternalServerError)
	}
	return m, nil
}

// Refresh runs a freshness check for an already imported module.
func (l *Loader) Refresh(name string) error {
	if l.cached(name) == nil {
		return nil
	}
	_, err := l.load(name, true)
	return err
}

// Modules returns a snapshot of the cache sorted by name.
func (l *Loader) Modules() []module.Info {
	l.mu.RLock()
	out := make([]module.Info, 0, len(l.modules))
	for _, m := range l.modules {
		out = append(out, m.Info())
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SearchPath returns a copy of the current search path.
func (l *Loader) SearchPath() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.searchPath...)
}

func (l *Loader) applySearchPath(sp []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sp != nil {
		l.searchPath = append([]string(nil), sp...)
		return
	}
	for _, d := range l.searchPath {
		if d == "." {
			return
		}
	}
	l.searchPath = append([]string{"."}, l.searchPath...)
}

func (l *Loader) cached(name string) *module.Module {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modules[name]
}

func (l *Loader) store(m *module.Module) {
	l.mu.Lock()
	l.modules[m.Name] = m
	l.mu.Unlock()
}

func (l *Loader) load(name string, autoreload bool) (*module.Module, error) {
	if !autoreload {
		if m := l.cached(name); m != nil {
			return m, nil
		}
	}
	v, err, _ := l.flight.Do(name, func() (any, error) {
		return l.refresh(name, autoreload)
	})
	if err != nil {
		return nil, err
	}
	return v.(*module.Module), nil
}

// refresh runs inside the single flight for name.
func (l *Loader) refresh(name string, autoreload bool) (*module.Module, error) {
	prev := l.cached(name)
	if prev == nil {
		m, err := l.execute(name, nil)
		l.observe(name, "import", err)
		if err != nil {
			return nil, err
		}
		l.store(m)
		return m, nil
	}
	if !autoreload || prev.Path == "" {
		return prev, nil
	}

	mtime, err := l.stat(prev.Path)
	if err != nil {
		// Source gone; keep serving what we have.
		l.log.Debug("module source stat failed", zap.String("module", name), zap.String("path", prev.Path), zap.Error(err))
		return prev, nil
	}
	if !mtime.After(prev.MTime) {
		return prev, nil
	}

	m, err := l.execute(name, prev)
	l.observe(name, "reload", err)
	if err != nil {
		return nil, err
	}
	l.store(m)
	l.log.Info("module reloaded",
		zap.String("module", name),
		zap.String("path", m.Path),
		zap.Int("generation", m.Generation),
	)
	return m, nil
}

// execute runs the module definition into a fresh namespace. The source is
// stat'ed before Init runs so edits made during execution trigger the next
// reload.
func (l *Loader) execute(name string, prev *module.Module) (*module.Module, error) {
	op := "import"
	if prev != nil {
		op = "reload"
	}
	fail := func(err error) (*module.Module, error) {
		return nil, &ModuleError{Name: name, Op: op, Err: err}
	}

	def, ok := l.reg.Lookup(name)
	if !ok {
		return fail(fmt.Errorf("no module named %q", name))
	}

	m := &module.Module{Namespace: module.NewNamespace(), Name: name, Generation: 1}
	if prev != nil {
		m.Generation = prev.Generation + 1
	}

	if def.Source != "" {
		if prev != nil && prev.Path != "" {
			m.Path = prev.Path
		} else {
			path, err := l.find(def.Source)
			if err != nil {
				return fail(err)
			}
			m.Path = path
		}
		mtime, err := l.stat(m.Path)
		if err != nil {
			return fail(err)
		}
		m.MTime = mtime
	}

	if err := runInit(def.Init, m); err != nil {
		return fail(err)
	}
	return m, nil
}

func (l *Loader) find(source string) (string, error) {
	if filepath.IsAbs(source) {
		if _, err := l.stat(source); err != nil {
			return "", err
		}
		return source, nil
	}
	dirs := l.SearchPath()
	for _, dir := range dirs {
		p := filepath.Join(dir, source)
		if _, err := l.stat(p); err == nil {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			return p, nil
		}
	}
	return "", fmt.Errorf("source %q not found in search path %v: %w", source, dirs, fs.ErrNotExist)
}

func runInit(init func(*module.Module) error, m *module.Module) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during init: %v", p)
		}
	}()
	return init(m)
}
