package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/spxeval/internal/cli"
	"github.com/ppiankov/spxeval/internal/runner"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		toolErr   *runner.ToolFailureError
		launchErr *runner.LaunchError
		dirErr    *runner.DirectoryError
	)
	switch {
	case errors.As(err, &toolErr):
		return 2
	case errors.As(err, &launchErr):
		return 3
	case errors.As(err, &dirErr):
		return 4
	default:
		return 1
	}
}
