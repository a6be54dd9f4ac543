// Package watcher reports changes to the rc config file, coalescing the
// bursts of events editors produce on save into a single notification.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
)

// DefaultSettleDelay is how long the file must stay quiet before a reload
const DefaultSettleDelay = 250 * time.Millisecond

// ConfigChange is delivered after the watched config file settles
type ConfigChange struct {
	Config *config.Config
	Err    error // load or validation failure; Config is nil
}

// ConfigWatcher reloads the config file whenever it changes on disk
type ConfigWatcher struct {
	path   string
	settle time.Duration
	log    zerolog.Logger

	changes chan ConfigChange
	once    sync.Once
	fsw     *fsnotify.Watcher

	mu      sync.Mutex
	pending *time.Timer
	gen     uint64 // bumped by every event; a timer only reloads for the newest
	reloads atomic.Int64
}

// NewConfigWatcher watches the config file at path. The parent directory is
// watched so that editors that replace the file atomically are still seen.
// A reload runs once the file has been quiet for settle (DefaultSettleDelay
// when zero).
func NewConfigWatcher(path string, settle time.Duration) (*ConfigWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("no config file to watch")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	return &ConfigWatcher{
		path:    abs,
		settle:  settle,
		log:     logging.For("watcher"),
		changes: make(chan ConfigChange, 1),
		fsw:     fsw,
	}, nil
}

// Changes delivers reloaded configurations. Only the latest pending change
// is kept if the receiver falls behind.
func (w *ConfigWatcher) Changes() <-chan ConfigChange {
	return w.changes
}

// Run processes file events until ctx is done or Close is called
func (w *ConfigWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("config event")
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// schedule pushes the pending reload out by the settle delay
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.gen++
	gen := w.gen
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.settle, func() { w.settled(gen) })
}

// settled runs the reload unless a later event rescheduled it. A timer that
// fired while Stop was racing it is rejected here.
func (w *ConfigWatcher) settled(gen uint64) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	w.mu.Unlock()
	w.reload()
}

func (w *ConfigWatcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func (w *ConfigWatcher) reload() {
	w.reloads.Add(1)
	change := ConfigChange{}
	cfg, err := config.Load(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config reload failed")
		change.Err = err
	} else {
		w.log.Info().Str("path", w.path).Msg("config reloaded")
		change.Config = cfg
	}
	w.publish(change)
}

// publish replaces any undelivered change with the newer one
func (w *ConfigWatcher) publish(c ConfigChange) {
	for {
		select {
		case w.changes <- c:
			return
		default:
		}
		select {
		case <-w.changes:
		default:
		}
	}
}

// Close stops watching
func (w *ConfigWatcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancelPending()
		err = w.fsw.Close()
	})
	return err
}
