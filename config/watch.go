package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file on change. The parent directory is
// watched because most editors replace the file instead of writing in
// place; a cooldown absorbs the resulting event bursts.
type Watcher struct {
	Path     string
	Cooldown time.Duration
}

// Start blocks until ctx is done, invoking onUpdate with each successfully
// reloaded config. Configs that fail to load or validate are skipped so a
// half-written file never reaches the caller.
func (w Watcher) Start(ctx context.Context, onUpdate func(AppConfig)) error {
	if w.Cooldown <= 0 {
		w.Cooldown = 2 * time.Second
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.Path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !last.IsZero() && time.Since(last) < w.Cooldown {
				continue
			}
			cfg, err := LoadWithEnvOverrides(w.Path)
			if err != nil {
				continue
			}
			last = time.Now()
			if onUpdate != nil {
				onUpdate(cfg)
			}
		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
		}
	}
}
