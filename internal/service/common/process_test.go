//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess implements ps.Process for tests.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func listOf(processes ...ps.Process) processLister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsureSingleInstance_IgnoresSelf verifies the current process never blocks itself.
func TestEnsureSingleInstance_IgnoresSelf(t *testing.T) {
	t.Parallel()

	list := listOf(
		fakeProcess{pid: 10, executable: "project-packager"},
		fakeProcess{pid: 11, executable: "bash"},
	)

	require.NoError(t, ensureSingleInstance("project-packager", 10, list))
}

// TestEnsureSingleInstance_DetectsOther reports a second process with the same executable.
func TestEnsureSingleInstance_DetectsOther(t *testing.T) {
	t.Parallel()

	list := listOf(
		fakeProcess{pid: 10, executable: "project-packager"},
		fakeProcess{pid: 42, executable: "project-packager"},
	)

	err := ensureSingleInstance("project-packager", 10, list)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "pid 42")
}

// TestEnsureSingleInstance_ListError propagates failures of the process listing.
func TestEnsureSingleInstance_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := ensureSingleInstance("x", 1, func() ([]ps.Process, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}

// TestEnsureSingleInstance_RealProcessTable runs against the OS for the test binary itself.
func TestEnsureSingleInstance_RealProcessTable(t *testing.T) {
	t.Parallel()

	name, err := CurrentExecutable()
	require.NoError(t, err)
	require.NotEmpty(t, name)

	require.NoError(t, EnsureSingleInstance("project-packager-test-nonexistent"))
}

// TestReportedName covers the Linux comm truncation.
func TestReportedName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "project-package", reportedName("project-packager", "linux"))
	require.Equal(t, "packager", reportedName("packager", "linux"))
	require.Equal(t, "project-packager", reportedName("project-packager", "darwin"))
	require.Equal(t, "project-packager.exe", reportedName("project-packager.exe", "windows"))
}

// TestEnsureSingleInstance_TruncatedLinuxName matches the name go-ps reports on Linux.
func TestEnsureSingleInstance_TruncatedLinuxName(t *testing.T) {
	t.Parallel()

	list := listOf(
		fakeProcess{pid: 10, executable: "project-package"},
		fakeProcess{pid: 77, executable: "project-package"},
	)

	err := ensureSingleInstance(reportedName("project-packager", "linux"), 10, list)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "pid 77")
}

// helperSleepEnv makes the test binary idle instead of running tests.
const helperSleepEnv = "PROJECT_PACKAGER_HELPER_SLEEP"

// TestHelperSleep is not a real test: it keeps a child process alive.
func TestHelperSleep(t *testing.T) {
	if os.Getenv(helperSleepEnv) != "1" {
		t.Skip("helper process only")
	}

	time.Sleep(30 * time.Second)
}

// TestEnsureSingleInstance_LiveProcess starts a real process called project-packager.
func TestEnsureSingleInstance_LiveProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable names carry .exe on windows")
	}

	self, err := os.Executable()
	require.NoError(t, err)

	binary := filepath.Join(t.TempDir(), "project-packager")
	copyExecutable(t, self, binary)

	cmd := exec.Command(binary, "-test.run=^TestHelperSleep$")
	cmd.Env = append(os.Environ(), helperSleepEnv+"=1")
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	require.Eventually(t, func() bool {
		return errors.Is(EnsureSingleInstance("project-packager"), ErrAlreadyRunning)
	}, 5*time.Second, 50*time.Millisecond)
}

// copyExecutable copies src to dst with execute permissions.
func copyExecutable(t *testing.T, src, dst string) {
	t.Helper()

	in, err := os.Open(src)
	require.NoError(t, err)

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	require.NoError(t, err)

	_, err = io.Copy(out, in)
	require.NoError(t, err)
	require.NoError(t, out.Close())
}
