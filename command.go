package ambience

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/evo-cloud/ambience/internal/unix"
)

// command builds a shell invocation of cmdline in its own process group.
// Cancelling ctx kills the whole group.
func (b *base) command(ctx context.Context, cmdline string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, b.shell, "-c", cmdline)
	cmd.SysProcAttr = unix.SysProcAttr()
	cmd.Cancel = func() error {
		return unix.KillGroup(cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = b.waitDelay
	return cmd
}

// spawn builds a long-lived child that outlives the caller's context
func (b *base) spawn(cmdline string) *exec.Cmd {
	return b.command(context.Background(), cmdline)
}

// run executes a discrete command to completion and returns its stdout.
// Both streams are logged as they arrive.
func (b *base) run(ctx context.Context, op Operation, cmdline string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := b.command(ctx, cmdline)
	cmd.Stdout = io.MultiWriter(&stdout, outputLogger{b: b, stream: streamStdout})
	cmd.Stderr = io.MultiWriter(&stderr, outputLogger{b: b, stream: streamStderr})

	b.logger.Debug().Stringer("op", op).Str("command", cmdline).Msg("running command")

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &OpError{
			Op:  op,
			ID:  b.id,
			Err: fmt.Errorf("%w: %w (stderr: %s)", ErrCommandFailed, err, bytes.TrimSpace(stderr.Bytes())),
		}
	}
	return stdout.Bytes(), nil
}

// signalFor picks the termination signal for a stop or unload
func signalFor(force bool) syscall.Signal {
	if force {
		return syscall.SIGKILL
	}
	return syscall.SIGTERM
}
