//go:build windows

package audio

import (
	"errors"
	"os"
)

var errSuspendUnsupported = errors.New("pausing a capture is not supported on windows")

func suspendProcess(p *os.Process) error {
	return errSuspendUnsupported
}

func continueProcess(p *os.Process) error {
	return errSuspendUnsupported
}
