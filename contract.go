package ambience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/evo-cloud/ambience/internal/unix"
)

// Contract drives a container through one long-lived controller process.
// Commands go to the controller's stdin as single-token lines; state, error
// and status events come back as lines on its stdout.
type Contract struct {
	base

	mu        sync.Mutex
	ctl       *controller
	unloading bool
}

// controller is a running controller process and its input stream
type controller struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines *lineWriter
}

var _ Supervisor = (*Contract)(nil)

// NewContract creates a controller driven supervisor. A controller command
// is required; command set fields are ignored.
func NewContract(id string, cfg Config, sink EventSink, opts ...Option) (*Contract, error) {
	if cfg.Ctl == "" {
		return nil, &OpError{Op: OpCreate, ID: id, Err: ErrNoController}
	}

	c := &Contract{}
	c.init(id, cfg, ModeContract, sink, opts)
	if cfg.hasCommandSet() {
		c.logger.Warn().Msg("controller configured, ignoring command set")
	}
	return c, nil
}

// Attached reports whether a controller process is owned
func (c *Contract) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl != nil
}

// Load spawns the controller. It reports nothing on success: state comes
// from the controller itself. Loading an attached supervisor is a no-op.
func (c *Contract) Load(_ context.Context, _ OpOptions) error {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctl != nil {
		return nil
	}
	c.unloading = false

	cmd := c.spawn(c.config.Ctl)
	ctl := &controller{
		cmd:   cmd,
		lines: &lineWriter{onLine: c.handleLine},
	}
	cmd.Stdout = ctl.lines
	cmd.Stderr = outputLogger{b: &c.base, stream: streamStderr}

	stdin, err := cmd.StdinPipe()
	if err == nil {
		ctl.stdin = stdin
		err = cmd.Start()
	}
	if err != nil {
		err = &OpError{Op: OpLoad, ID: c.id, Err: err}
		c.processError(err)
		return err
	}

	c.logger.Debug().Int("pid", cmd.Process.Pid).Msg("controller spawned")
	c.ctl = ctl
	go c.watch(ctl)
	return nil
}

// Unload terminates the controller; offline is reported once it exits.
// Without a controller offline is reported immediately.
func (c *Contract) Unload(_ context.Context, opts OpOptions) error {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctl == nil {
		c.post(stateEvent(StateOffline))
		return nil
	}

	c.unloading = true
	sig := signalFor(opts.Force)
	pid := c.ctl.cmd.Process.Pid
	c.logger.Debug().Stringer("signal", sig).Int("pid", pid).Msg("signalling controller")
	if err := unix.KillGroup(pid, sig); err != nil {
		return &OpError{Op: OpUnload, ID: c.id, Err: err}
	}
	return nil
}

// Start asks the controller to start the workload
func (c *Contract) Start(_ context.Context, _ OpOptions) error {
	return c.send(OpStart, false)
}

// Stop asks the controller to stop the workload
func (c *Contract) Stop(_ context.Context, opts OpOptions) error {
	return c.send(OpStop, opts.Force)
}

// Status asks the controller for a status report
func (c *Contract) Status(_ context.Context, _ OpOptions) error {
	return c.send(OpStatus, false)
}

// send writes the operation's token to the controller. Without a
// controller it fails with ErrNotAttached and reports nothing.
func (c *Contract) send(op Operation, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctl == nil {
		return &OpError{Op: op, ID: c.id, Err: ErrNotAttached}
	}

	token := op.Token(force)
	c.logger.Debug().Str("token", token).Msg("sending to controller")
	if _, err := io.WriteString(c.ctl.stdin, token+"\n"); err != nil {
		return &OpError{Op: op, ID: c.id, Err: err}
	}
	return nil
}

// handleLine dispatches one complete controller line
func (c *Contract) handleLine(raw string) {
	line, ok := ParseLine(raw)
	if !ok {
		return
	}

	switch line.Keyword {
	case KeywordState:
		c.reportState(State(strings.ToLower(line.Payload)))
	case KeywordError:
		c.reportError(fmt.Errorf("%w: %s", ErrController, line.Payload))
	case KeywordStatus:
		if status, ok := c.decodeStatus(line.Payload); ok {
			c.reportStatus(status)
		}
	default:
		c.logger.Debug().Str("keyword", line.Keyword).Msg("ignoring controller event")
	}
}

// processError handles a controller that cannot be used any more.
// Callers hold c.mu and flush after releasing it.
func (c *Contract) processError(err error) {
	c.ctl = nil
	c.unloading = false
	c.post(errorEvent(err))
	c.post(stateEvent(StateOffline))
}

// watch waits for the controller to exit. Stdout is fully parsed by the
// time Wait returns, so every line is reported before the exit is.
func (c *Contract) watch(ctl *controller) {
	err := ctl.cmd.Wait()

	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctl != ctl {
		return
	}

	if c.unloading {
		c.logger.Debug().Msg("controller unloaded")
		c.ctl = nil
		c.unloading = false
		c.post(stateEvent(StateOffline))
		return
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		c.logger.Warn().Msg("controller exited unexpectedly")
		c.ctl = nil
		c.post(stateEvent(StateOffline))
	case errors.As(err, &exitErr):
		c.logger.Warn().Str("exit", exitErr.String()).Msg("controller exited unexpectedly")
		c.processError(fmt.Errorf("%w: %s", ErrControllerExited, exitErr))
	default:
		c.processError(&OpError{Op: OpLoad, ID: c.id, Err: err})
	}
}
