package ambience

import (
	"bytes"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Output stream names used in logs
const (
	streamStdout = "stdout"
	streamStderr = "stderr"
)

// base holds what both strategies share: identity, configuration, the
// event sink and the execution environment.
type base struct {
	id        string
	config    Config
	mode      Mode
	sink      EventSink
	logger    zerolog.Logger
	shell     string
	waitDelay time.Duration

	// queue holds events waiting for delivery; one goroutine at a time
	// drains it, so sink calls stay ordered and a sink may call back in.
	queueMu    sync.Mutex
	queue      []Event
	delivering bool
}

func (b *base) init(id string, cfg Config, mode Mode, sink EventSink, opts []Option) {
	b.id = id
	b.config = cfg
	b.mode = mode
	b.sink = sink
	b.logger = zerolog.Nop()
	b.shell = DefaultShell
	b.waitDelay = DefaultWaitDelay
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With().Str("container", id).Str("mode", mode.String()).Logger()
}

// ID returns the container identity
func (b *base) ID() string {
	return b.id
}

// Config returns a copy of the configuration
func (b *base) Config() Config {
	return b.config
}

// Mode returns the strategy in use
func (b *base) Mode() Mode {
	return b.mode
}

// post stamps e and queues it for delivery. Callers holding a supervisor
// lock post under it and flush once the lock is released.
func (b *base) post(e Event) {
	e.ID = b.id
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.logger.Debug().Stringer("kind", e.Kind).Msg(e.String())

	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	if b.sink == nil {
		return
	}
	b.queue = append(b.queue, e)
}

// flush delivers queued events in order. If another goroutine is already
// delivering, including a sink calling back into the supervisor, flush
// returns and that goroutine delivers the rest.
func (b *base) flush() {
	b.queueMu.Lock()
	if b.delivering {
		b.queueMu.Unlock()
		return
	}
	b.delivering = true
	for len(b.queue) > 0 {
		e := b.queue[0]
		b.queue[0] = Event{}
		b.queue = b.queue[1:]
		b.queueMu.Unlock()
		b.sink(e)
		b.queueMu.Lock()
	}
	b.queue = nil
	b.delivering = false
	b.queueMu.Unlock()
}

// report delivers an event to the sink. Every call is delivered.
func (b *base) report(e Event) {
	b.post(e)
	b.flush()
}

func stateEvent(state State) Event {
	return Event{Kind: EventState, State: state}
}

func errorEvent(err error) Event {
	return Event{Kind: EventError, Err: err}
}

func (b *base) reportState(state State) {
	b.report(stateEvent(state))
}

func (b *base) reportError(err error) {
	b.report(errorEvent(err))
}

func (b *base) reportStatus(status map[string]any) {
	b.report(Event{Kind: EventStatus, Status: status})
}

// logOutput logs a chunk of child output, prefixed with its stream
func (b *base) logOutput(stream string, chunk []byte) {
	text := bytes.TrimRight(chunk, "\r\n")
	if len(text) == 0 {
		return
	}
	b.logger.Info().Str("stream", stream).Msgf("[%s] %s", stream, text)
}

// outputLogger adapts logOutput to an io.Writer for a child's stream
type outputLogger struct {
	b      *base
	stream string
}

func (w outputLogger) Write(p []byte) (int, error) {
	w.b.logOutput(w.stream, p)
	return len(p), nil
}
