// Package confwatch reports changes of a configuration file.
package confwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// DefaultDebounce coalesces bursts of writes into one notification
const DefaultDebounce = 100 * time.Millisecond

// Event reports that the watched file changed, or that watching failed
type Event struct {
	Path string
	Err  error
}

// CleanupFunc stops watching and waits for the watcher to exit
type CleanupFunc func() error

// Watch notifies on the returned channel whenever path is written,
// created or renamed into place. The parent directory is watched so that
// atomic replacements are seen. The channel is closed by cleanup.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan Event, CleanupFunc, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	ch := make(chan Event, 1)
	sctx := stopper.WithContext(ctx)

	var (
		mu        sync.Mutex
		closed    bool
		debouncer *time.Timer
	)

	// send never blocks; a pending notification already covers this one
	send := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	}

	sctx.Defer(func() {
		mu.Lock()
		defer mu.Unlock()
		if debouncer != nil {
			debouncer.Stop()
		}
		closed = true
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	sctx.Go(func(sctx *stopper.Context) error {
		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(debounce, func() {
					send(Event{Path: abs})
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					send(Event{Path: abs, Err: err})
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}
