package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/spxeval/internal/runner"
)

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables lipgloss styling.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// PrintResult writes the captured streams: stdout under "Output:", and
// stderr under "Error:" only when the tool wrote any.
func (r *TextReporter) PrintResult(res *runner.Result) {
	fmt.Fprintln(r.w, r.style(headerStyle, "Output:"))
	writeBlock(r.w, res.Stdout)

	if res.Stderr != "" {
		fmt.Fprintln(r.w, r.style(headerStyle.Inherit(warnStyle), "Error:"))
		writeBlock(r.w, res.Stderr)
	}
}

// PrintStatus writes a one-line summary of the run.
func (r *TextReporter) PrintStatus(res *runner.Result) {
	dur := res.Duration.Truncate(time.Millisecond)
	if res.Failed() {
		fmt.Fprintf(r.w, "%s  %s\n", r.style(failedStyle, fmt.Sprintf("✗ exit %d", res.ExitCode)), r.style(dimStyle, fmt.Sprintf("%s  run %s", dur, res.RunID)))
		return
	}
	fmt.Fprintf(r.w, "%s  %s\n", r.style(okStyle, "✓ exit 0"), r.style(dimStyle, fmt.Sprintf("%s  run %s", dur, res.RunID)))
}

// PrintCommand writes argv on one line, quoting tokens a shell would split
// or expand, so the line can be pasted into a terminal.
func (r *TextReporter) PrintCommand(argv []string) {
	quoted := make([]string, len(argv))
	for i, tok := range argv {
		quoted[i] = shellQuote(tok)
	}
	fmt.Fprintln(r.w, strings.Join(quoted, " "))
}

// PrintWatching announces which path a watch loop is waiting on.
func (r *TextReporter) PrintWatching(path string) {
	fmt.Fprintln(r.w, r.style(dimStyle, fmt.Sprintf("watching %s (ctrl-c to stop)", path)))
}

func (r *TextReporter) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// writeBlock prints text followed by a newline, even when text already
// ends with one, so tool output keeps its trailing blank line.
func writeBlock(w io.Writer, text string) {
	fmt.Fprintln(w, text)
}

const shellSpecial = " \t\n'\"\\$`*?[]{}()<>|&;#~!"

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
