//go:build !windows

// Package process terminates browser process trees.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU children down with it.
func KillProcessGroup(pid int) {
	// Errors are ignored: the launcher kill that follows covers the leader.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
