//go:build !unix

package runner

import (
	"os"
	"syscall"
)

type signal int

const (
	sigTerm signal = iota
	sigKill
)

func groupAttr() *syscall.SysProcAttr { return nil }

// signalGroup kills only the shell on platforms without process groups.
func signalGroup(pgid int, _ signal) error {
	p, err := os.FindProcess(pgid)
	if err != nil {
		return nil
	}
	return p.Kill()
}

func signalled(*os.ProcessState) (int, bool) { return 0, false }
