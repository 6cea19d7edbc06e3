//go:build !windows

package runner

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// pipeDrainDelay bounds how long Wait keeps reading stdout/stderr after
// the group was killed.
const pipeDrainDelay = 2 * time.Second

// setupProcessGroup starts the evaluation tool as the leader of a new
// process group. Cancelling the context SIGKILLs the whole group, so
// helpers the tool forked cannot hold the capture pipes open.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = pipeDrainDelay
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
