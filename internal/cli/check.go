package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/spxeval/internal/config"
)

func newCheckCmd() *cobra.Command {
	var bin, workdir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the evaluation binary can be found and executed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			rf := requestFlags{bin: bin, workdir: workdir}
			r, err := rf.newRunner(cfg)
			if err != nil {
				return err
			}

			path, err := r.Lookup()
			if err != nil {
				return err
			}

			base := cfg.BinaryBase
			if base == "" {
				base = config.BaseWorkdir
			}
			if bin != "" {
				base = "flag"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "binary:      %s\n", path)
			fmt.Fprintf(out, "resolved by: %s\n", base)
			fmt.Fprintf(out, "exit policy: %s\n", r.Policy())
			if r.Dir() != "" {
				fmt.Fprintf(out, "workdir:     %s\n", r.Dir())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bin, "bin", "", "evaluation binary (overrides config)")
	cmd.Flags().StringVar(&workdir, "workdir", "", "working directory of the evaluation tool (overrides config)")

	return cmd
}
