package loader

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads cached modules as soon as their source files are written,
// instead of waiting for the next request to notice. Directories of newly
// imported modules are picked up every watch interval. Watch returns when
// ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := map[string]bool{}
	syncDirs := func() {
		for _, mi := range l.Modules() {
			if mi.Path == "" {
				continue
			}
			dir := filepath.Dir(mi.Path)
			if watched[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				l.log.Warn("module watch failed", zap.String("dir", dir), zap.Error(err))
				continue
			}
			watched[dir] = true
		}
	}
	syncDirs()

	ticker := time.NewTicker(l.watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			syncDirs()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			for _, name := range l.modulesAt(ev.Name) {
				if err := l.Refresh(name); err != nil {
					l.log.Warn("module reload failed", zap.String("module", name), zap.Error(err))
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("module watcher error", zap.Error(err))
		}
	}
}

func (l *Loader) modulesAt(path string) []string {
	path = filepath.Clean(path)
	var names []string
	for _, mi := range l.Modules() {
		if mi.Path == path {
			names = append(names, mi.Name)
		}
	}
	return names
}
