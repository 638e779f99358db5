package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a config file when it changes on disk and publishes every
// version that passes validation. Invalid edits are logged and skipped so the
// last good config stays in effect.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	path    string
	finish  func(*Config) error
	log     *zap.Logger

	debounceDur time.Duration
	updates     chan *Config
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher prepares a watcher for path. finish, when non-nil, runs on each
// reloaded config before it is published (environment and flag overrides).
func NewWatcher(path string, finish func(*Config) error, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        abs,
		finish:      finish,
		log:         log,
		debounceDur: 100 * time.Millisecond,
		updates:     make(chan *Config, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Updates delivers reloaded configs. Only the newest unread config is kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start watches the directory holding the file, so editors that replace the
// file on save are still seen. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	w.log.Debug("watching config", zap.String("path", w.path))
	go w.run(ctx)
	return nil
}

// Stop ends the watch and releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing config watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(w.debounceDur / 2)
	defer debounceTicker.Stop()

	var pendingSince time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pendingSince = time.Now()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))

		case <-debounceTicker.C:
			if pendingSince.IsZero() || time.Since(pendingSince) < w.debounceDur {
				continue
			}
			pendingSince = time.Time{}
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err == nil && w.finish != nil {
		err = w.finish(cfg)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.log.Warn("ignoring invalid config change", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path), zap.String("variant", cfg.Variant))

	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}
