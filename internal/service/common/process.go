//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-ps"
)

// linuxCommLength is the size limit of /proc/<pid>/stat process names, excluding the NUL byte.
const linuxCommLength = 15

// ErrAlreadyRunning indicates that another process with the same executable name is alive.
var ErrAlreadyRunning = errors.New("another packager process is running")

// processLister returns the processes currently known to the OS.
type processLister func() ([]ps.Process, error)

// CurrentExecutable returns the base name of the running binary.
func CurrentExecutable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}

	return filepath.Base(path), nil
}

// EnsureSingleInstance fails with ErrAlreadyRunning when a process other than
// the current one runs an executable called name.
func EnsureSingleInstance(name string) error {
	return ensureSingleInstance(reportedName(name, runtime.GOOS), os.Getpid(), ps.Processes)
}

// reportedName returns name as the process table of goos shows it.
// Linux truncates it to linuxCommLength bytes.
func reportedName(name, goos string) string {
	if goos == "linux" && len(name) > linuxCommLength {
		return name[:linuxCommLength]
	}

	return name
}

func ensureSingleInstance(name string, thisProcessID int, list processLister) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != name {
			continue
		}

		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, process.Pid())
	}

	return nil
}
