package agent

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher monitors the agent's TOML config file via fsnotify and
// applies changed settings to the running pipeline. Only settings that
// are safe to change at runtime take effect: service URL, send buffer
// size, and queue length. The worker keeps its original send interval.
type ConfigWatcher struct {
	path  string
	base  Config
	apply func(Config)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewConfigWatcher creates a watcher for the given config file. base is
// the configuration the agent started with; file values overlay it on
// each reload before apply is called.
func NewConfigWatcher(path string, base Config, apply func(Config)) *ConfigWatcher {
	return &ConfigWatcher{
		path:  path,
		base:  base,
		apply: apply,
	}
}

// Run watches the config file until the context is cancelled.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: failed to watch")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("config watcher: error")
		}
	}
}

func (w *ConfigWatcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(delay, w.Reload)
}

// Reload re-reads the config file, overlays it on the base config, and
// hands the result to the apply callback. Invalid files are logged and
// skipped; the running configuration is left untouched.
func (w *ConfigWatcher) Reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: reload failed")
		return
	}

	cfg := w.base
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: invalid config")
		return
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn().Err(err).Str("path", w.path).Msg("config watcher: invalid config")
		return
	}

	logger.Info().Str("path", w.path).Msg("config watcher: applying updated configuration")
	w.apply(cfg)
}
