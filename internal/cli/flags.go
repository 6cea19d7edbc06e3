package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/spxeval/internal/config"
	"github.com/ppiankov/spxeval/internal/reporter"
	"github.com/ppiankov/spxeval/internal/runner"
)

// requestFlags binds the evaluation parameters shared by run and watch.
type requestFlags struct {
	ext    string
	img    string
	gt     string
	label  string
	save   string
	rmsize int

	bin     string
	workdir string
	strict  bool
	format  string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.ext, "ext", "png", "file extension of images and labels")
	fl.StringVar(&f.img, "img", "", "input image file or directory")
	fl.StringVar(&f.gt, "gt", "", "ground-truth segmentation file or directory")
	fl.StringVar(&f.label, "label", "", "superpixel label map file or directory")
	fl.StringVar(&f.save, "save", "", "directory for evaluation output (created if missing)")
	fl.IntVar(&f.rmsize, "rmsize", 0, "minimum superpixel size in pixels")
	fl.StringVar(&f.bin, "bin", "", "evaluation binary (overrides config)")
	fl.StringVar(&f.workdir, "workdir", "", "working directory of the evaluation tool (overrides config)")
	fl.BoolVar(&f.strict, "strict", false, "treat a non-zero tool exit as an error")
	fl.StringVar(&f.format, "format", "text", "output format: text or json")
}

// request merges flags with config defaults. Explicit flags win.
func (f *requestFlags) request(cmd *cobra.Command, cfg *config.Settings) runner.Request {
	req := runner.Request{
		Extension:         f.ext,
		ImagePath:         f.img,
		GroundTruthPath:   f.gt,
		SuperpixelMapPath: f.label,
		SavePath:          f.save,
		MinSuperpixelSize: f.rmsize,
	}
	if !cmd.Flags().Changed("ext") && cfg.Defaults.Extension != "" {
		req.Extension = cfg.Defaults.Extension
	}
	if !cmd.Flags().Changed("rmsize") && cfg.Defaults.MinSuperpixelSize != nil {
		req.MinSuperpixelSize = *cfg.Defaults.MinSuperpixelSize
	}
	return req
}

// newRunner builds the Runner from flags and config.
func (f *requestFlags) newRunner(cfg *config.Settings) (*runner.Runner, error) {
	bin := f.bin
	if bin == "" {
		resolved, err := cfg.ResolveBinary(configFile)
		if err != nil {
			return nil, err
		}
		bin = resolved
	}

	policy, err := runner.ParseExitPolicy(cfg.ExitPolicy)
	if err != nil {
		return nil, err
	}
	if f.strict {
		policy = runner.ExitPolicyFail
	}

	dir := f.workdir
	if dir == "" {
		dir = cfg.Workdir
	}
	return runner.New(bin, runner.WithExitPolicy(policy), runner.WithDir(dir)), nil
}

func (f *requestFlags) validateFormat() error {
	switch f.format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", f.format)
	}
}

// emit writes res to out in the selected format.
func (f *requestFlags) emit(out io.Writer, res *runner.Result) error {
	if f.format == "json" {
		return reporter.WriteJSON(out, res)
	}
	rep := reporter.NewTextReporter(out, out == os.Stdout && isTerminal())
	rep.PrintResult(res)
	rep.PrintStatus(res)
	return nil
}

func loadSettings() (*config.Settings, error) {
	cfg, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
