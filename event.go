package ambience

import (
	"fmt"
	"time"
)

// State is a lifecycle state name observed through events.
// Controllers may report names beyond the three below; they pass through
// lower-cased.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StateOffline State = "offline"
)

// EventKind tags an Event
type EventKind int

const (
	// EventState carries a State
	EventState EventKind = iota + 1
	// EventError carries an error description
	EventError
	// EventStatus carries a decoded status payload
	EventStatus
)

// String returns the string representation of an EventKind
func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventError:
		return "error"
	case EventStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Event is a lifecycle, error or status report from a supervisor
type Event struct {
	// ID is the container the event belongs to
	ID string
	// Kind tells which of the payload fields is set
	Kind EventKind
	// State is set for EventState
	State State
	// Err is set for EventError
	Err error
	// Status is set for EventStatus
	Status map[string]any
	// Time is when the supervisor reported the event
	Time time.Time
}

// String returns a short human readable form of the event
func (e Event) String() string {
	switch e.Kind {
	case EventState:
		return fmt.Sprintf("%s state=%s", e.ID, e.State)
	case EventError:
		return fmt.Sprintf("%s error=%v", e.ID, e.Err)
	case EventStatus:
		return fmt.Sprintf("%s status=%v", e.ID, e.Status)
	default:
		return fmt.Sprintf("%s %s", e.ID, e.Kind)
	}
}

// EventSink receives every event a supervisor reports
type EventSink func(Event)

// Sinks fans each event out to all non-nil sinks, in order
func Sinks(sinks ...EventSink) EventSink {
	return func(e Event) {
		for _, sink := range sinks {
			if sink != nil {
				sink(e)
			}
		}
	}
}
