package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultDebounce = 100 * time.Millisecond

// FileWatcher reports changes to a single file. The parent directory is watched so that
// editors which replace the file by renaming are still noticed.
type FileWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changes  chan struct{}
	logger   zerolog.Logger
}

func New(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("error watching %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  w,
		changes:  make(chan struct{}, 1),
		logger:   log.With().Str("component", "watcher").Str("path", abs).Logger(),
	}, nil
}

// Changes delivers one value per settled burst of writes. Bursts that arrive while a value
// is still unread are merged into it.
func (w *FileWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Run watches until ctx is done or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context) {
	debounce := time.NewTimer(0)
	<-debounce.C

	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug().Str("op", event.Op.String()).Msg("file event")
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false

			select {
			case w.changes <- struct{}{}:
				w.logger.Info().Msg("file changed")
			default:
			}
		}
	}
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}

	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
