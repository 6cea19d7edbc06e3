package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBinary is where the evaluation tool is built by its own makefile.
const DefaultBinary = "./bin/main"

// EvalMode selects the small-superpixel evaluation in the external tool.
const EvalMode = "10"

// ExitPolicy decides whether a non-zero tool exit is returned as an error.
type ExitPolicy string

const (
	// ExitPolicyReport surfaces the exit code and stderr in the Result only.
	ExitPolicyReport ExitPolicy = "report"
	// ExitPolicyFail additionally returns a *ToolFailureError.
	ExitPolicyFail ExitPolicy = "fail"
)

// ParseExitPolicy maps a config or flag value to an ExitPolicy.
// The empty string selects ExitPolicyReport.
func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch ExitPolicy(s) {
	case "", ExitPolicyReport:
		return ExitPolicyReport, nil
	case ExitPolicyFail:
		return ExitPolicyFail, nil
	default:
		return "", fmt.Errorf("unknown exit policy %q (want %q or %q)", s, ExitPolicyReport, ExitPolicyFail)
	}
}

// Result captures one run of the evaluation tool.
type Result struct {
	RunID     string        `json:"run_id"`
	Request   Request       `json:"request"`
	Command   []string      `json:"command"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	ExitCode  int           `json:"exit_code"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`
}

// Failed reports whether the tool exited non-zero.
func (r *Result) Failed() bool { return r.ExitCode != 0 }

// Runner drives the external evaluation binary. It holds no per-run state
// and may be shared between goroutines.
type Runner struct {
	binary string
	policy ExitPolicy
	dir    string
}

// Option configures a Runner.
type Option func(*Runner)

// WithExitPolicy sets how a non-zero tool exit is reported.
// Only ExitPolicyFail turns it into an error; any other value, including an
// unrecognised one, is normalised to ExitPolicyReport by New.
func WithExitPolicy(p ExitPolicy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithDir sets the working directory of the tool. A relative binary that
// contains a separator (./bin/main) is then resolved against dir, not
// against the caller's working directory. Bare names still come from PATH.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// New creates a Runner for binary. An empty binary selects DefaultBinary.
func New(binary string, opts ...Option) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	r := &Runner{binary: binary, policy: ExitPolicyReport}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy != ExitPolicyFail {
		r.policy = ExitPolicyReport
	}
	return r
}

// Binary returns the configured tool path.
func (r *Runner) Binary() string { return r.binary }

// Policy returns the effective exit policy.
func (r *Runner) Policy() ExitPolicy { return r.policy }

// Dir returns the tool's working directory; empty means the caller's.
func (r *Runner) Dir() string { return r.dir }

// Command builds the argv for one evaluation. The order and spelling of the
// flags are fixed by the tool's parser.
func Command(binary string, req Request) []string {
	return []string{
		binary,
		"--ext", req.Extension,
		"--eval", EvalMode,
		"--img", req.ImagePath,
		"--gt", req.GroundTruthPath,
		"--rmsize", strconv.Itoa(req.MinSuperpixelSize),
		"--save", req.SavePath,
		"--label", req.SuperpixelMapPath,
	}
}

// BuildArguments returns Command for the runner's binary.
func (r *Runner) BuildArguments(req Request) []string {
	return Command(r.binary, req)
}

// EnsureOutputDirectory creates path and any missing parents.
// An existing directory is left untouched.
func (r *Runner) EnsureOutputDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &DirectoryError{Path: path, Err: err}
	}
	return nil
}

// Lookup resolves the binary the way Execute will. Paths containing a
// separator are checked directly (relative to the WithDir directory when
// set); bare names are searched on PATH.
func (r *Runner) Lookup() (string, error) {
	bin := r.binary
	if r.dir != "" && !filepath.IsAbs(bin) && strings.ContainsRune(bin, filepath.Separator) {
		bin = filepath.Join(r.dir, bin)
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &LaunchError{Binary: r.binary, Err: err}
	}
	return path, nil
}

// Execute ensures the save directory, runs the tool and blocks until it exits.
// Stdout and stderr are captured, never inherited. Under ExitPolicyReport a
// non-zero exit is not an error; inspect Result.ExitCode instead. Under
// ExitPolicyFail it is returned as a *ToolFailureError next to the Result.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := r.EnsureOutputDirectory(req.SavePath); err != nil {
		return nil, err
	}

	argv := r.BuildArguments(req)
	result := &Result{
		RunID:   uuid.NewString(),
		Request: req,
		Command: argv,
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.dir
	setupProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("spawning evaluation", "run_id", result.RunID, "binary", r.binary, "save", req.SavePath)

	result.StartedAt = time.Now()
	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluation interrupted: %w", ctxErr)
		}
		return nil, &LaunchError{Binary: r.binary, Err: err}
	}
	waitErr := cmd.Wait()
	result.EndedAt = time.Now()
	result.Duration = result.EndedAt.Sub(result.StartedAt)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.ExitCode = cmd.ProcessState.ExitCode()

	slog.Debug("evaluation finished", "run_id", result.RunID, "exit_code", result.ExitCode, "duration", result.Duration)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("evaluation interrupted: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("wait for evaluation: %w", waitErr)
	}

	if r.policy == ExitPolicyFail && result.Failed() {
		return result, &ToolFailureError{ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	var last string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	return last
}
