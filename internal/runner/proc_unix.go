//go:build unix

package runner

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	sigTerm = unix.SIGTERM
	sigKill = unix.SIGKILL
)

// groupAttr puts the shell in a new process group so that signals reach
// everything it spawns.
func groupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to every process in the group led by pgid. A group
// that has already exited is not an error.
func signalGroup(pgid int, sig unix.Signal) error {
	if pgid <= 0 {
		return nil
	}
	err := unix.Kill(-pgid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// signalled reports the number of the signal that killed the process, if any.
func signalled(ps *os.ProcessState) (int, bool) {
	if ps == nil {
		return 0, false
	}
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return int(ws.Signal()), true
}
