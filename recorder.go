package ambience

import (
	"context"
	"slices"
	"sync"
)

// Recorder is an event sink that keeps every event it receives and lets
// callers block until a matching one arrives. Waits consume events: each
// Wait resumes scanning after the event the previous one returned.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	cursor  int
	changed chan struct{}
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{})}
}

// Sink records e. Use the method value r.Sink as an EventSink.
func (r *Recorder) Sink(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	close(r.changed)
	r.changed = make(chan struct{})
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// States returns the recorded state names in order
func (r *Recorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []State
	for _, e := range r.events {
		if e.Kind == EventState {
			states = append(states, e.State)
		}
	}
	return states
}

// Wait blocks until a state event in one of states arrives. With no
// states any state event matches.
func (r *Recorder) Wait(ctx context.Context, states ...State) (Event, error) {
	return r.WaitFunc(ctx, func(e Event) bool {
		if e.Kind != EventState {
			return false
		}
		return len(states) == 0 || slices.Contains(states, e.State)
	})
}

// WaitFunc blocks until an event satisfying match arrives
func (r *Recorder) WaitFunc(ctx context.Context, match func(Event) bool) (Event, error) {
	for {
		r.mu.Lock()
		for r.cursor < len(r.events) {
			e := r.events[r.cursor]
			r.cursor++
			if match(e) {
				r.mu.Unlock()
				return e, nil
			}
		}
		changed := r.changed
		r.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}
