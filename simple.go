package ambience

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"vawter.tech/stopper"

	"github.com/evo-cloud/ambience/internal/unix"
)

// Simple drives a container through up to six optional shell commands.
// Without a stop command (or with InProc set) it owns the started process
// directly and stops it with a signal; otherwise it polls the state command
// to follow the workload's health.
type Simple struct {
	base

	inproc bool
	delay  time.Duration

	mu      sync.Mutex
	proc    *exec.Cmd
	monitor *stopper.Context
}

var _ Supervisor = (*Simple)(nil)

// NewSimple creates a command driven supervisor. A start command is required.
func NewSimple(id string, cfg Config, sink EventSink, opts ...Option) (*Simple, error) {
	if cfg.Start == "" {
		return nil, &OpError{Op: OpCreate, ID: id, Err: ErrNoStartCommand}
	}

	s := &Simple{
		inproc: cfg.InProc || cfg.Stop == "",
		delay:  cfg.MonitorDelay,
	}
	if s.delay <= 0 {
		s.delay = DefaultMonitorDelay
	}
	s.init(id, cfg, ModeSimple, sink, opts)
	return s, nil
}

// InProc reports whether the supervisor owns the workload process
func (s *Simple) InProc() bool {
	return s.inproc
}

// Load runs the prepare command and reports stopped
func (s *Simple) Load(ctx context.Context, _ OpOptions) error {
	if s.config.Prepare != "" {
		if _, err := s.run(ctx, OpLoad, s.config.Prepare); err != nil {
			s.reportError(err)
			return err
		}
	}
	s.reportState(StateStopped)
	return nil
}

// Unload runs the cleanup command and reports offline
func (s *Simple) Unload(ctx context.Context, _ OpOptions) error {
	s.haltMonitor()

	if s.config.Cleanup != "" {
		if _, err := s.run(ctx, OpUnload, s.config.Cleanup); err != nil {
			s.reportError(err)
			return err
		}
	}
	s.reportState(StateOffline)
	return nil
}

// Start starts the workload. In-process mode reports running before the
// child is spawned; external mode reports running once the start command
// succeeds and then begins health monitoring. Starting while an in-process
// child is owned reports running again and spawns nothing.
func (s *Simple) Start(ctx context.Context, _ OpOptions) error {
	if s.inproc {
		return s.startInProc()
	}

	if _, err := s.run(ctx, OpStart, s.config.Start); err != nil {
		s.reportError(err)
		return err
	}
	s.reportState(StateRunning)
	s.startMonitor(ctx)
	return nil
}

func (s *Simple) startInProc() error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.post(stateEvent(StateRunning))
	if s.proc != nil {
		return nil
	}

	cmd := s.spawn(s.config.Start)
	cmd.Stdout = outputLogger{b: &s.base, stream: streamStdout}
	cmd.Stderr = outputLogger{b: &s.base, stream: streamStderr}
	if err := cmd.Start(); err != nil {
		err = &OpError{Op: OpStart, ID: s.id, Err: err}
		s.post(errorEvent(err))
		s.post(stateEvent(StateStopped))
		return err
	}

	s.logger.Debug().Int("pid", cmd.Process.Pid).Msg("workload spawned")
	s.proc = cmd
	go s.watchInProc(cmd)
	return nil
}

// watchInProc waits for an owned child and reports its end. A watcher whose
// child is no longer the owned one stays silent.
func (s *Simple) watchInProc(cmd *exec.Cmd) {
	err := cmd.Wait()

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != cmd {
		return
	}
	s.proc = nil

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.logger.Debug().Msg("workload exited")
	case errors.As(err, &exitErr):
		s.logger.Debug().Str("exit", exitErr.String()).Msg("workload exited")
	default:
		s.post(errorEvent(&OpError{Op: OpStart, ID: s.id, Err: err}))
	}
	s.post(stateEvent(StateStopped))
}

// Stop stops the workload. With a stop command it runs the command and, on
// success, releases and signals any owned child whose exit then goes
// unreported. With only an owned child it signals the child's process group
// and leaves the stopped report to the exit watcher. Otherwise it reports
// stopped right away.
func (s *Simple) Stop(ctx context.Context, opts OpOptions) error {
	defer s.flush()

	if s.config.Stop != "" {
		if _, err := s.run(ctx, OpStop, s.config.Stop); err != nil {
			s.reportError(err)
			return err
		}
		s.haltMonitor()

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.proc != nil {
			_ = s.signal(s.proc, opts.Force)
			s.proc = nil
		}
		s.post(stateEvent(StateStopped))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc == nil {
		s.post(stateEvent(StateStopped))
		return nil
	}

	if err := s.signal(s.proc, opts.Force); err != nil {
		err = &OpError{Op: OpStop, ID: s.id, Err: err}
		s.post(errorEvent(err))
		return err
	}
	return nil
}

// signal sends the stop signal to cmd's process group
func (s *Simple) signal(cmd *exec.Cmd, force bool) error {
	sig := signalFor(force)
	pid := cmd.Process.Pid
	s.logger.Debug().Stringer("signal", sig).Int("pid", pid).Msg("signalling workload")
	if err := unix.KillGroup(pid, sig); err != nil {
		s.logger.Warn().Err(err).Int("pid", pid).Msg("signalling workload")
		return err
	}
	return nil
}

// Status runs the status command and reports the decoded payload
func (s *Simple) Status(ctx context.Context, _ OpOptions) error {
	if s.config.Status == "" {
		return nil
	}

	out, err := s.run(ctx, OpStatus, s.config.Status)
	if err != nil {
		s.reportError(err)
		return err
	}
	if status, ok := s.decodeStatus(string(out)); ok {
		s.reportStatus(status)
	}
	return nil
}
