//go:build windows

package runner

import (
	"os/exec"
	"time"
)

const pipeDrainDelay = 2 * time.Second

// setupProcessGroup only bounds the pipe drain on Windows; there are no
// process groups, so cancellation kills the tool process alone.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = pipeDrainDelay
}
