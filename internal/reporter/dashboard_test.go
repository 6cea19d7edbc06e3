package reporter

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/spxeval/internal/runner"
)

func sizedDashboard(cancelFn func()) DashboardModel {
	m := NewDashboardModel("labels/img.pgm", cancelFn)
	m.width = 100
	m.height = 30
	return m
}

func finish(t *testing.T, m DashboardModel, res *runner.Result) DashboardModel {
	t.Helper()
	next, _ := m.Update(RunFinishedMsg{Result: res})
	return next.(DashboardModel)
}

func TestDashboard_Init(t *testing.T) {
	if NewDashboardModel("x", nil).Init() == nil {
		t.Fatal("Init should return a tick command")
	}
}

func TestDashboard_RunLifecycle(t *testing.T) {
	m := sizedDashboard(nil)

	next, _ := m.Update(RunStartedMsg{At: time.Now()})
	m = next.(DashboardModel)
	if !m.running {
		t.Fatal("expected running after RunStartedMsg")
	}
	if !strings.Contains(m.View(), "evaluating") {
		t.Error("view should show a running evaluation")
	}

	m = finish(t, m, sampleResult())
	if m.running {
		t.Fatal("expected idle after RunFinishedMsg")
	}
	if len(m.history) != 1 {
		t.Fatalf("history: got %d runs, want 1", len(m.history))
	}

	view := m.View()
	for _, want := range []string{"spxeval watch", "labels/img.pgm", "exit 0", "small superpixels: 12", "1 runs"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestDashboard_LastRunShowsStderr(t *testing.T) {
	res := sampleResult()
	res.ExitCode = 3
	res.Stderr = "Image and labels must have the same size\n"

	view := finish(t, sizedDashboard(nil), res).View()
	if !strings.Contains(view, "exit 3") || !strings.Contains(view, "same size") {
		t.Errorf("expected failure details in view:\n%s", view)
	}
}

func TestDashboard_HistoryTab(t *testing.T) {
	m := sizedDashboard(nil)
	first := sampleResult()
	first.RunID = "aaaaaaaa-0000"
	second := sampleResult()
	second.RunID = "bbbbbbbb-1111"
	second.ExitCode = 2
	m = finish(t, m, first)
	m = finish(t, m, second)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = next.(DashboardModel)
	if m.tab != 1 {
		t.Fatalf("expected tab 1, got %d", m.tab)
	}

	view := m.View()
	if !strings.Contains(view, "aaaaaaaa") || !strings.Contains(view, "bbbbbbbb") {
		t.Errorf("history should list both runs:\n%s", view)
	}
	if strings.Index(view, "bbbbbbbb") > strings.Index(view, "aaaaaaaa") {
		t.Error("history should list newest run first")
	}
	if !strings.Contains(view, "exit 2") {
		t.Error("history should show the failed exit code")
	}
}

func TestDashboard_HistoryCapped(t *testing.T) {
	m := sizedDashboard(nil)
	for i := 0; i < maxHistory+5; i++ {
		m = finish(t, m, sampleResult())
	}
	if len(m.history) != maxHistory {
		t.Errorf("history: got %d, want %d", len(m.history), maxHistory)
	}
}

func TestDashboard_QuitCancels(t *testing.T) {
	cancelled := false
	m := sizedDashboard(func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("q should trigger cancel function")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
}

func TestDashboard_ViewBeforeResize(t *testing.T) {
	if got := NewDashboardModel("x", nil).View(); got != "Initializing..." {
		t.Errorf("got %q", got)
	}
}
