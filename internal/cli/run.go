package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/spxeval/internal/reporter"
)

func newRunCmd() *cobra.Command {
	var (
		rf         requestFlags
		dryRun     bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate one superpixel map with the external tool",
		Long: `Run builds the evaluation command line, creates the save directory, runs the
tool and prints its captured stdout and stderr.

A non-zero tool exit is reported but not treated as an error unless --strict
is given or exit_policy is "fail" in the config file.`,
		Example: `  spxeval run --ext png --img data/img --gt data/gt --label out/labels --save out/eval --rmsize 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rf.validateFormat(); err != nil {
				return err
			}
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			req := rf.request(cmd, cfg)
			r, err := rf.newRunner(cfg)
			if err != nil {
				return err
			}

			if dryRun {
				if err := req.Validate(); err != nil {
					return err
				}
				reporter.NewTextReporter(cmd.OutOrStdout(), false).PrintCommand(r.BuildArguments(req))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, runErr := r.Execute(ctx, req)
			if res == nil {
				return runErr
			}

			// streams are surfaced even when strict mode turns the exit into an error
			if err := rf.emit(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if reportPath != "" {
				if err := reporter.WriteJSONReport(res, reportPath); err != nil {
					return err
				}
				slog.Debug("report written", "run_id", res.RunID, "path", reportPath)
			}
			if runErr != nil {
				return fmt.Errorf("run %s: %w", res.RunID, runErr)
			}
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the tool command line without running it")
	cmd.Flags().StringVar(&reportPath, "report", "", "also write the result as JSON to this file")

	return cmd
}
