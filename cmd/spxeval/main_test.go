package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/ppiankov/spxeval/internal/runner"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), 1},
		{"tool failure", fmt.Errorf("run abc: %w", &runner.ToolFailureError{ExitCode: 7}), 2},
		{"launch", &runner.LaunchError{Binary: "./bin/main", Err: os.ErrNotExist}, 3},
		{"directory", &runner.DirectoryError{Path: "/out", Err: os.ErrPermission}, 4},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}
