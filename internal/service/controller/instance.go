package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// commLength is the executable name length the Linux kernel keeps per process.
const commLength = 15

// ErrAlreadyRunning is returned when another controller process owns the zone.
var ErrAlreadyRunning = errors.New("another zone controller is already running")

// ensureSingleInstance fails when another process runs the same executable.
// Two controllers would race on the outputs file and the hub switches.
func ensureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	return findDuplicate(processList, os.Getpid(), filepath.Base(executable))
}

// findDuplicate looks for a process other than self running name.
func findDuplicate(processList []ps.Process, self int, name string) error {
	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if sameExecutable(process.Executable(), name) {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}

// sameExecutable compares process names, tolerating the truncated names
// reported on Linux and the extension on Windows.
func sameExecutable(running, name string) bool {
	if strings.EqualFold(running, name) {
		return true
	}

	trimmed := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.EqualFold(running, trimmed) {
		return true
	}

	return len(name) > commLength && running == name[:commLength]
}
