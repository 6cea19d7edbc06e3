package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/spxeval/internal/runner"
)

// maxHistory caps the runs kept by the watch dashboard.
const maxHistory = 100

// RunStartedMsg tells the dashboard an evaluation was spawned.
type RunStartedMsg struct {
	At time.Time
}

// RunFinishedMsg carries a completed evaluation to the dashboard.
type RunFinishedMsg struct {
	Result *runner.Result
}

type dashboardTickMsg time.Time

// DashboardModel is the Bubbletea model for `spxeval watch`.
type DashboardModel struct {
	path      string
	running   bool
	startedAt time.Time
	history   []*runner.Result // oldest first
	tab       int              // 0=last run, 1=history
	scroll    int
	frame     int
	width     int
	height    int
	cancelFn  func()
}

// NewDashboardModel creates a dashboard for the watched label path.
// cancelFn is called when the user quits.
func NewDashboardModel(path string, cancelFn func()) DashboardModel {
	return DashboardModel{path: path, cancelFn: cancelFn}
}

// Init implements tea.Model.
func (m DashboardModel) Init() tea.Cmd {
	return dashboardTickCmd()
}

func dashboardTickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelFn != nil {
				m.cancelFn()
			}
			return m, tea.Quit
		case "1":
			m.tab = 0
			m.scroll = 0
		case "2":
			m.tab = 1
			m.scroll = 0
		case "tab":
			m.tab = (m.tab + 1) % 2
			m.scroll = 0
		case "j", "down":
			m.scroll++
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		case "g":
			m.scroll = 0
		}

	case RunStartedMsg:
		m.running = true
		m.startedAt = msg.At

	case RunFinishedMsg:
		m.running = false
		if msg.Result != nil {
			m.history = append(m.history, msg.Result)
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
		}

	case dashboardTickMsg:
		m.frame++
		return m, dashboardTickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	contentHeight := m.height - 7 // header + tabs + footer
	if contentHeight < 3 {
		contentHeight = 3
	}
	lines := strings.Split(m.renderContent(), "\n")

	scroll := m.scroll
	if scroll > len(lines)-contentHeight {
		scroll = max(0, len(lines)-contentHeight)
	}
	end := min(scroll+contentHeight, len(lines))
	visible := lines[scroll:end]
	b.WriteString(strings.Join(visible, "\n"))
	for i := len(visible); i < contentHeight; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  1-2/tab switch view  j/k scroll  q quit"))

	return b.String()
}

func (m DashboardModel) renderHeader() string {
	status := dimStyle.Render(fmt.Sprintf("idle, %d runs", len(m.history)))
	if m.running {
		elapsed := time.Since(m.startedAt).Truncate(100 * time.Millisecond)
		status = runStyle.Render(spinnerChars[m.frame%len(spinnerChars)] + " evaluating " + elapsed.String())
	}
	return headerStyle.Render("spxeval watch") + dimStyle.Render("  "+m.path) + "\n" + status
}

func (m DashboardModel) renderTabs() string {
	tabs := []string{"Last Run", "History"}
	parts := make([]string, 0, len(tabs))
	for i, name := range tabs {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if i == m.tab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m DashboardModel) renderContent() string {
	if m.tab == 1 {
		return m.renderHistory()
	}
	return m.renderLastRun()
}

func (m DashboardModel) renderLastRun() string {
	if len(m.history) == 0 {
		return dimStyle.Render("  waiting for the first evaluation...")
	}
	res := m.history[len(m.history)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s  %s\n", exitLabel(res), res.Duration.Truncate(time.Millisecond), dimStyle.Render("run "+res.RunID))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Output:") + "\n")
	b.WriteString(strings.TrimRight(res.Stdout, "\n") + "\n")
	if res.Stderr != "" {
		b.WriteString(headerStyle.Inherit(warnStyle).Render("Error:") + "\n")
		b.WriteString(strings.TrimRight(res.Stderr, "\n") + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("  no runs yet")
	}
	var b strings.Builder
	for i := len(m.history) - 1; i >= 0; i-- {
		res := m.history[i]
		fmt.Fprintf(&b, "  %s  %-8s  %-10s  %s\n",
			res.StartedAt.Format("15:04:05"), shortID(res.RunID), res.Duration.Truncate(time.Millisecond), exitLabel(res))
	}
	return b.String()
}

func exitLabel(res *runner.Result) string {
	if res.Failed() {
		return failedStyle.Render(fmt.Sprintf("✗ exit %d", res.ExitCode))
	}
	return okStyle.Render("✓ exit 0")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
