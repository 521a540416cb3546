//go:build darwin

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
// On Darwin a group whose leader exited may report EPERM instead of ESRCH.
func KillGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if err == nil || errors.Is(err, syscall.ESRCH) || errors.Is(err, syscall.EPERM) {
		return nil
	}
	return err
}
