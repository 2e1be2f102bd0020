package catalog

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"charselect/internal/events"
)

// Publisher receives dataset change notifications.
type Publisher interface {
	Publish(typ, name string) events.DatasetEvent
}

// Watcher invalidates the store and publishes an event whenever a dataset
// file in the data directory changes.
type Watcher struct {
	store  *Store
	pub    Publisher
	logger *log.Logger
}

func NewWatcher(store *Store, pub Publisher, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{store: store, pub: pub, logger: logger}
}

// Run watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.store.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.store.Dir(), err)
	}
	w.logger.Printf("[watch] watching %s", w.store.Dir())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("[watch] error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return
	}

	w.store.Invalidate(name)
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.pub.Publish(events.DatasetRemoved, name)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.pub.Publish(events.DatasetChanged, name)
	default:
		return
	}
	w.logger.Printf("[watch] %s %s", ev.Op, name)
}
