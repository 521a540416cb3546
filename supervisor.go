package ambience

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Supervisor is the interface both strategies implement. It drives the
// lifecycle of one container and reports state, error and status events
// through the EventSink given at construction.
//
// Operations on one Supervisor must not be issued concurrently.
type Supervisor interface {
	// ID returns the container identity
	ID() string
	// Config returns a copy of the configuration
	Config() Config
	// Mode returns the strategy in use
	Mode() Mode

	// Lifecycle operations
	Load(ctx context.Context, opts OpOptions) error
	Unload(ctx context.Context, opts OpOptions) error
	Start(ctx context.Context, opts OpOptions) error
	Stop(ctx context.Context, opts OpOptions) error
	Status(ctx context.Context, opts OpOptions) error
}

// OpOptions modifies a single lifecycle operation
type OpOptions struct {
	// Force selects SIGKILL over SIGTERM for stop and unload
	Force bool
}

// Option configures a Supervisor
type Option func(*base)

// WithLogger sets the logger; it is scoped with the container id and mode
func WithLogger(logger zerolog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// WithShell sets the shell used to run command strings
func WithShell(path string) Option {
	return func(b *base) {
		b.shell = path
	}
}

// WithWaitDelay sets how long output copying may outlive an exited child
func WithWaitDelay(d time.Duration) Option {
	return func(b *base) {
		b.waitDelay = d
	}
}
