package runner

import "fmt"

// DirectoryError is returned when the save directory cannot be created,
// including when the path already exists as a regular file.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("create save dir %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// LaunchError is returned when the evaluation binary cannot be found or started.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ToolFailureError reports a non-zero exit of the evaluation binary.
// Only returned under ExitPolicyFail.
type ToolFailureError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolFailureError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("evaluation tool exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("evaluation tool exited with code %d: %s", e.ExitCode, lastLine(e.Stderr))
}
