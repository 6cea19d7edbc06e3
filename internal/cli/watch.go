package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ppiankov/spxeval/internal/reporter"
	"github.com/ppiankov/spxeval/internal/runner"
)

// debounceDefault coalesces the burst of events a label writer produces.
const debounceDefault = 300 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var rf requestFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the evaluation whenever the superpixel map changes",
		Long: `Watch runs the evaluation once, then again each time the file or directory
given by --label is written. Tool failures are reported and watching
continues; a missing binary or unusable save directory stops the loop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rf.validateFormat(); err != nil {
				return err
			}
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			req := rf.request(cmd, cfg)
			if err := req.Validate(); err != nil {
				return err
			}
			r, err := rf.newRunner(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if rf.format == "text" && out == os.Stdout && isTerminal() {
				return runDashboard(ctx, r, req)
			}
			return runWatch(ctx, r, req, &textSink{out: out, status: cmd.ErrOrStderr(), emit: rf.emit, path: req.SuperpixelMapPath})
		},
	}

	rf.register(cmd)

	return cmd
}

type emitFunc func(io.Writer, *runner.Result) error

// watchSink receives the lifecycle of each evaluation in the watch loop.
type watchSink interface {
	Started()
	// Finished gets the result (possibly nil) and the error from Execute.
	// A non-nil return stops the loop.
	Finished(res *runner.Result, err error) error
}

// textSink prints each result through emit and a watch notice to status.
type textSink struct {
	out    io.Writer
	status io.Writer
	emit   emitFunc
	path   string
}

func (s *textSink) Started() {}

func (s *textSink) Finished(res *runner.Result, err error) error {
	if res != nil {
		if emitErr := s.emit(s.out, res); emitErr != nil {
			return emitErr
		}
	}
	var toolErr *runner.ToolFailureError
	if errors.As(err, &toolErr) {
		slog.Warn("evaluation failed", "run_id", res.RunID, "exit_code", toolErr.ExitCode)
	}
	reporter.NewTextReporter(s.status, false).PrintWatching(s.path)
	return nil
}

// dashboardSink forwards results to a running Bubbletea program.
type dashboardSink struct {
	p *tea.Program
}

func (s *dashboardSink) Started() {
	s.p.Send(reporter.RunStartedMsg{At: time.Now()})
}

func (s *dashboardSink) Finished(res *runner.Result, _ error) error {
	s.p.Send(reporter.RunFinishedMsg{Result: res})
	return nil
}

// runDashboard drives the watch loop behind the full-screen dashboard.
// Quitting the dashboard cancels the loop and any running evaluation.
func runDashboard(ctx context.Context, r *runner.Runner, req runner.Request) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(reporter.NewDashboardModel(req.SuperpixelMapPath, cancel), tea.WithAltScreen())

	errCh := make(chan error, 1)
	go func() {
		errCh <- runWatch(ctx, r, req, &dashboardSink{p: p})
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	if err := <-errCh; err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("dashboard: %w", runErr)
	}
	return nil
}

// runWatch evaluates req once and again after every change to its label
// path, handing each run to sink. It returns nil when ctx is cancelled.
func runWatch(ctx context.Context, r *runner.Runner, req runner.Request, sink watchSink) error {
	target, err := filepath.Abs(req.SuperpixelMapPath)
	if err != nil {
		return fmt.Errorf("resolve label path: %w", err)
	}
	save, err := filepath.Abs(req.SavePath)
	if err != nil {
		return fmt.Errorf("resolve save path: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat label path: %w", err)
	}
	watchDir := target
	if !info.IsDir() {
		watchDir = filepath.Dir(target)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	relevant := func(ev fsnotify.Event) bool {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
			return false
		}
		// the tool's own output must not retrigger a run
		if within(ev.Name, save) {
			return false
		}
		return info.IsDir() || ev.Name == target
	}

	if within(target, save) {
		slog.Warn("label path is inside the save directory; changes will be ignored", "label", target, "save", save)
	}

	evaluate := func() error {
		sink.Started()
		res, err := r.Execute(ctx, req)
		var toolErr *runner.ToolFailureError
		switch {
		case err == nil, errors.As(err, &toolErr):
			return sink.Finished(res, err)
		case ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}

	slog.Info("watching superpixel map", "path", target, "dir", watchDir)
	if err := evaluate(); err != nil {
		return err
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			slog.Debug("label change", "file", ev.Name, "op", ev.Op.String())
			debounce = time.After(debounceDefault)

		case <-debounce:
			debounce = nil
			if err := evaluate(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
