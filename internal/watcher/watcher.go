// Package watcher re-plans a library tree when it changes.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/jellytidy/internal/logging"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Handler receives debounced batches of events.
type Handler interface {
	HandleBatch(ctx context.Context, events []FileEvent) error
	IsRelevant(path string) bool
}

// DefaultDebounce is the quiet period before a batch is handed over.
const DefaultDebounce = 5 * time.Second

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	recursive bool
	debounce  time.Duration
	logger    *logging.Logger
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		recursive: true,
		debounce:  DefaultDebounce,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if w.recursive {
			if err := w.addRecursive(path, nil); err != nil {
				return err
			}
			continue
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Info("watcher", "watching", logging.F("path", path))
	}
	return nil
}

// addRecursive watches root and every non-hidden directory below it. Files
// met on the way are passed to found when it is set.
func (w *Watcher) addRecursive(root string, found func(path string)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			if found != nil {
				found(path)
			}
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Debug("watcher", "watching", logging.F("path", path))
		return nil
	})
}

// Run delivers batches to the handler until ctx is cancelled. Handler errors
// are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher", "watcher started", logging.F("debounce", w.debounce.String()))

	pending := make(map[string]FileEvent)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.recursive && !strings.HasPrefix(filepath.Base(event.Name), ".") {
						// a directory moved in carries files that raise no events of their own
						queued := 0
						err := w.addRecursive(event.Name, func(path string) {
							if fe, ok := w.translate(fsnotify.Event{Name: path, Op: fsnotify.Create}); ok {
								pending[fe.Path] = fe
								queued++
							}
						})
						if err != nil {
							w.logger.Warn("watcher", "failed to watch new directory",
								logging.F("path", event.Name),
								logging.F("error", err.Error()))
						}
						if queued > 0 {
							timer.Reset(w.debounce)
						}
					}
					continue
				}
			}

			fe, ok := w.translate(event)
			if !ok {
				continue
			}
			pending[fe.Path] = fe
			timer.Reset(w.debounce)

		case <-timer.C:
			batch := drain(pending)
			w.logger.Info("watcher", "tree changed", logging.F("events", len(batch)))
			if err := w.handler.HandleBatch(ctx, batch); err != nil {
				w.logger.Error("watcher", "handler failed", err)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "watcher error", logging.F("error", err.Error()))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// translate maps an fsnotify event to a FileEvent, dropping irrelevant paths
// and the temporary names apply uses while renaming.
func (w *Watcher) translate(event fsnotify.Event) (FileEvent, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".jellytidy-") {
		return FileEvent{}, false
	}
	if !w.handler.IsRelevant(event.Name) {
		return FileEvent{}, false
	}

	eventType := EventCreate
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventMove
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDelete
	case event.Op&fsnotify.Create == fsnotify.Create:
	default:
		return FileEvent{}, false
	}

	w.logger.Debug("watcher", "event",
		logging.F("type", string(eventType)),
		logging.F("file", base))
	return FileEvent{Type: eventType, Path: event.Name}, true
}

// drain empties pending into a path-sorted batch.
func drain(pending map[string]FileEvent) []FileEvent {
	batch := make([]FileEvent, 0, len(pending))
	for path, fe := range pending {
		batch = append(batch, fe)
		delete(pending, path)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	return batch
}
