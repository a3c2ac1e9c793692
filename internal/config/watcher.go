package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/skel-labs/skelbot/internal/logging"
)

// Watcher re-reads the config file when it changes and hands the fresh
// configuration to a callback. Only runtime-adjustable settings (log
// level) are worth applying; connection settings need a restart.
type Watcher struct {
	path     string
	onChange func(*Config)
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace files rather than writing
	// in place, which drops a file-level watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: path, onChange: onChange, watcher: w}, nil
}

// Run processes change events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				logging.Warn().Err(err).Str("path", w.path).Msg("ignoring unloadable config change")
				continue
			}
			logging.Info().Str("path", w.path).Msg("config file changed")
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("config watcher error")
		}
	}
}
