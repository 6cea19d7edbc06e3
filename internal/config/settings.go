package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/spxeval/internal/runner"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".spxeval.yml"

// Binary resolution bases for a relative Settings.Binary.
const (
	BaseWorkdir    = "workdir"    // relative to the process working directory
	BaseExecutable = "executable" // relative to the spxeval executable's directory
	BaseConfig     = "config"     // relative to the config file's directory
)

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Binary     string   `yaml:"binary"`      // default ./bin/main
	BinaryBase string   `yaml:"binary_base"` // workdir | executable | config
	ExitPolicy string   `yaml:"exit_policy"` // report | fail
	Workdir    string   `yaml:"workdir"`     // tool working directory; empty = caller's
	Defaults   Defaults `yaml:"defaults"`
}

// Defaults fill request fields the command line leaves unset.
type Defaults struct {
	Extension         string `yaml:"ext"`
	MinSuperpixelSize *int   `yaml:"rmsize"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &s, nil
}

// Validate checks enumerated fields.
func (s *Settings) Validate() error {
	var errs *multierror.Error
	switch s.BinaryBase {
	case "", BaseWorkdir, BaseExecutable, BaseConfig:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown binary_base %q", s.BinaryBase))
	}
	if _, err := runner.ParseExitPolicy(s.ExitPolicy); err != nil {
		errs = multierror.Append(errs, err)
	}
	if m := s.Defaults.MinSuperpixelSize; m != nil && *m < 0 {
		errs = multierror.Append(errs, fmt.Errorf("defaults.rmsize must be >= 0, got %d", *m))
	}
	return errs.ErrorOrNil()
}

// ResolveBinary returns the tool path to exec.
//
// Absolute paths are returned unchanged and bare names (no separator) are
// left for PATH lookup. A relative path is kept relative to the working
// directory (the default), or joined onto the directory of the running
// executable or of configPath, depending on BinaryBase.
func (s *Settings) ResolveBinary(configPath string) (string, error) {
	bin := s.Binary
	if bin == "" {
		bin = runner.DefaultBinary
	}
	if filepath.IsAbs(bin) || filepath.Base(bin) == bin {
		return bin, nil
	}

	switch s.BinaryBase {
	case "", BaseWorkdir:
		return bin, nil
	case BaseExecutable:
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), bin), nil
	case BaseConfig:
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return filepath.Join(filepath.Dir(abs), bin), nil
	default:
		return "", fmt.Errorf("unknown binary_base %q", s.BinaryBase)
	}
}
