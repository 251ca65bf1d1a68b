//go:build !windows

package audio

import (
	"os"
	"syscall"
)

func suspendProcess(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

func continueProcess(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}
