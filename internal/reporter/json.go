package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/spxeval/internal/runner"
)

// WriteJSONReport writes the result as JSON to the given path.
func WriteJSONReport(res *runner.Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// WriteJSON streams the result as indented JSON to w.
func WriteJSON(w io.Writer, res *runner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
