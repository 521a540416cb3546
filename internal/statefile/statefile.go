// Package statefile keeps an atomically replaced JSON snapshot of the last
// known state, error and status of every container.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/evo-cloud/ambience"
)

// FileMode is the permission of the snapshot file
const FileMode = 0o644

// Entry is the snapshot of one container
type Entry struct {
	State   ambience.State `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
	Status  map[string]any `json:"status,omitempty"`
	Updated time.Time      `json:"updated"`
}

// Writer rewrites the snapshot file on every event it records
type Writer struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]Entry
}

// New creates a Writer for path. Nothing is written until the first event.
func New(path string, logger zerolog.Logger) *Writer {
	return &Writer{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Record folds e into the snapshot and persists it. Write failures are
// logged; Record is an ambience.EventSink.
func (w *Writer) Record(e ambience.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := w.entries[e.ID]
	switch e.Kind {
	case ambience.EventState:
		entry.State = e.State
		if e.State == ambience.StateRunning {
			entry.Error = ""
		}
	case ambience.EventError:
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
	case ambience.EventStatus:
		entry.Status = e.Status
	}
	entry.Updated = e.Time
	w.entries[e.ID] = entry

	if err := w.flush(); err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("writing state file")
	}
}

// Forget drops a container from the snapshot
func (w *Writer) Forget(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, id)
	return w.flush()
}

func (w *Writer) flush() error {
	data, err := json.MarshalIndent(w.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := renameio.WriteFile(w.path, append(data, '\n'), FileMode); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot written by a Writer
func Read(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return entries, nil
}
