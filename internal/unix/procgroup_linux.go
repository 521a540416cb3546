//go:build linux

// Package unix provides platform-specific process group handling.
package unix

import (
	"errors"
	"syscall"
)

// SysProcAttr places a child in its own process group so that signals reach
// everything the shell spawns.
func SysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// KillGroup sends sig to the process group led by pid.
// A group that is already gone is not an error.
func KillGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}
