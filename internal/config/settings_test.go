package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSettings_Valid(t *testing.T) {
	content := `
binary: /opt/spx/bin/main
binary_base: config
exit_policy: fail
workdir: /srv/spx
defaults:
  ext: pgm
  rmsize: 40
`
	path := writeTemp(t, content)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.Binary != "/opt/spx/bin/main" {
		t.Errorf("binary: got %q, want /opt/spx/bin/main", s.Binary)
	}
	if s.BinaryBase != BaseConfig {
		t.Errorf("binary_base: got %q, want config", s.BinaryBase)
	}
	if s.ExitPolicy != "fail" {
		t.Errorf("exit_policy: got %q, want fail", s.ExitPolicy)
	}
	if s.Workdir != "/srv/spx" {
		t.Errorf("workdir: got %q, want /srv/spx", s.Workdir)
	}
	if s.Defaults.Extension != "pgm" {
		t.Errorf("defaults.ext: got %q, want pgm", s.Defaults.Extension)
	}
	if s.Defaults.MinSuperpixelSize == nil || *s.Defaults.MinSuperpixelSize != 40 {
		t.Errorf("defaults.rmsize: got %v, want 40", s.Defaults.MinSuperpixelSize)
	}
}

func TestLoadSettings_Partial(t *testing.T) {
	path := writeTemp(t, `binary: ./build/eval`)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.Binary != "./build/eval" {
		t.Errorf("binary: got %q, want ./build/eval", s.Binary)
	}
	if s.ExitPolicy != "" {
		t.Errorf("exit_policy: got %q, want empty", s.ExitPolicy)
	}
	if s.Defaults.MinSuperpixelSize != nil {
		t.Errorf("defaults.rmsize: got %d, want unset", *s.Defaults.MinSuperpixelSize)
	}
}

func TestLoadSettings_ZeroRemoveSizeIsSet(t *testing.T) {
	path := writeTemp(t, "defaults:\n  rmsize: 0\n")
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Defaults.MinSuperpixelSize == nil || *s.Defaults.MinSuperpixelSize != 0 {
		t.Errorf("defaults.rmsize: got %v, want explicit 0", s.Defaults.MinSuperpixelSize)
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Binary != "" {
		t.Errorf("expected zero-value settings, got binary=%q", s.Binary)
	}
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "binary: [invalid\n")
	_, err := LoadSettings(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadSettings_InvalidEnums(t *testing.T) {
	path := writeTemp(t, "binary_base: home\nexit_policy: panic\ndefaults:\n  rmsize: -5\n")
	_, err := LoadSettings(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"binary_base", "exit policy", "rmsize"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got: %v", want, err)
		}
	}
}

func TestResolveBinary(t *testing.T) {
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, ".spxeval.yml")

	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	cases := []struct {
		name string
		s    Settings
		want string
	}{
		{"default", Settings{}, "./bin/main"},
		{"absolute", Settings{Binary: "/opt/eval/main", BinaryBase: BaseConfig}, "/opt/eval/main"},
		{"bare name", Settings{Binary: "spx-eval", BinaryBase: BaseConfig}, "spx-eval"},
		{"workdir", Settings{Binary: "./bin/main", BinaryBase: BaseWorkdir}, "./bin/main"},
		{"config", Settings{Binary: "./bin/main", BinaryBase: BaseConfig}, filepath.Join(cfgDir, "bin", "main")},
		{"executable", Settings{Binary: "bin/main", BinaryBase: BaseExecutable}, filepath.Join(filepath.Dir(exe), "bin", "main")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.s.ResolveBinary(cfgPath)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".spxeval.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
