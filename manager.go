package ambience

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Manager holds the supervisors of several containers and runs lifecycle
// operations across them with bounded concurrency.
type Manager struct {
	// Concurrency is the maximum number of concurrent operations
	Concurrency int
	// Timeout bounds each operation; zero, the default, means no deadline.
	// Supervisors themselves never time commands out: a deadline here
	// cancels the operation's context, which kills the running command.
	Timeout time.Duration

	sink EventSink
	opts []Option

	mu          sync.RWMutex
	supervisors map[string]Supervisor
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConcurrency sets the maximum number of concurrent operations
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		m.Concurrency = n
	}
}

// WithTimeout sets the per-operation timeout
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.Timeout = d
	}
}

// WithSink sets the sink every managed supervisor reports to
func WithSink(sink EventSink) ManagerOption {
	return func(m *Manager) {
		m.sink = sink
	}
}

// WithSupervisorOptions sets the options passed to every New call
func WithSupervisorOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// NewManager creates a new Manager with default settings
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		Concurrency: 10,
		supervisors: make(map[string]Supervisor),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Concurrency < 1 {
		m.Concurrency = 1
	}

	return m
}

// Add creates and registers the supervisor for id
func (m *Manager) Add(id string, cfg Config) (Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.supervisors[id]; ok {
		return nil, &OpError{Op: OpCreate, ID: id, Err: ErrDuplicateContainer}
	}
	sup, err := New(id, cfg, m.sink, m.opts...)
	if err != nil {
		return nil, err
	}
	m.supervisors[id] = sup
	return sup, nil
}

// Get returns the supervisor registered for id
func (m *Manager) Get(id string) (Supervisor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sup, ok := m.supervisors[id]
	return sup, ok
}

// Remove forgets the supervisor for id. It does not unload it.
func (m *Manager) Remove(id string) (Supervisor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sup, ok := m.supervisors[id]
	delete(m.supervisors, id)
	return sup, ok
}

// IDs returns the registered ids in sorted order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.supervisors))
	for id := range m.supervisors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type lifecycleFunc func(Supervisor, context.Context, OpOptions) error

func (m *Manager) execute(ctx context.Context, op Operation, opts OpOptions, ids []string, fn lifecycleFunc) error {
	if len(ids) == 0 {
		ids = m.IDs()
	}
	if len(ids) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(m.Concurrency)

	var mu sync.Mutex
	merr := &MultiError{}
	add := func(err error) {
		mu.Lock()
		merr.Add(err)
		mu.Unlock()
	}

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				add(&OpError{Op: op, ID: id, Err: err})
				return nil
			}

			sup, ok := m.Get(id)
			if !ok {
				add(&OpError{Op: op, ID: id, Err: ErrUnknownContainer})
				return nil
			}

			opCtx := ctx
			if m.Timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, m.Timeout)
				defer cancel()
			}

			add(fn(sup, opCtx, opts))
			return nil
		})
	}

	_ = g.Wait()
	return merr.Err()
}

// Load loads the given containers, or all of them when ids is empty
func (m *Manager) Load(ctx context.Context, opts OpOptions, ids ...string) error {
	return m.execute(ctx, OpLoad, opts, ids, Supervisor.Load)
}

// Unload unloads the given containers, or all of them when ids is empty
func (m *Manager) Unload(ctx context.Context, opts OpOptions, ids ...string) error {
	return m.execute(ctx, OpUnload, opts, ids, Supervisor.Unload)
}

// Start starts the given containers, or all of them when ids is empty
func (m *Manager) Start(ctx context.Context, opts OpOptions, ids ...string) error {
	return m.execute(ctx, OpStart, opts, ids, Supervisor.Start)
}

// Stop stops the given containers, or all of them when ids is empty
func (m *Manager) Stop(ctx context.Context, opts OpOptions, ids ...string) error {
	return m.execute(ctx, OpStop, opts, ids, Supervisor.Stop)
}

// Status queries the given containers, or all of them when ids is empty.
// Payloads arrive through the sink.
func (m *Manager) Status(ctx context.Context, opts OpOptions, ids ...string) error {
	return m.execute(ctx, OpStatus, opts, ids, Supervisor.Status)
}
