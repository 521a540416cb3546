//go:build linux || darwin

package unix

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKillGroup(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "sleep 30; sleep 30")
	cmd.SysProcAttr = SysProcAttr()
	require.NoError(t, cmd.Start())

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	require.NoError(t, KillGroup(cmd.Process.Pid, syscall.SIGTERM))

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("process group did not terminate")
	}

	// The group is gone now, signalling it again is harmless.
	require.NoError(t, KillGroup(cmd.Process.Pid, syscall.SIGKILL))
}
