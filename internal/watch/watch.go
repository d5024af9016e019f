// Package watch provides an interactive terminal monitor for termtap
// sessions: a live session list with output previews, plus key bindings
// to run commands in and kill sessions without leaving the monitor.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termtap/termtap/internal/engine"
	"github.com/termtap/termtap/internal/model"
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	taskStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	previewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// view mode
type viewMode int

const (
	modeList viewMode = iota
	modeTextInput
)

// messages
type sessionsMsg struct {
	sessions []model.SessionInfo
	err      error
}

type previewMsg struct {
	session string
	lines   []string
	err     error
}

type tickMsg struct{}

// TUI runs the interactive session monitor.
type TUI struct {
	Engine          *engine.Engine
	RefreshInterval time.Duration // 0 disables auto-refresh
}

// model implements tea.Model
type tuiModel struct {
	eng             *engine.Engine
	ctx             context.Context
	refreshInterval time.Duration

	sessions []model.SessionInfo
	cursor   int
	mode     viewMode

	// latest output preview, keyed to the selected session
	preview        []string
	previewSession string

	// text input state (exec a command in the selected session)
	textInput  textinput.Model
	textTarget string

	width  int
	height int

	loading bool
	message string
}

func (t *TUI) Run(ctx context.Context) error {
	ti := textinput.New()
	ti.Placeholder = "Command to run, then Enter..."
	ti.CharLimit = 2048
	ti.Width = 80

	m := &tuiModel{
		eng:             t.Engine,
		ctx:             ctx,
		refreshInterval: t.RefreshInterval,
		textInput:       ti,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *tuiModel) Init() tea.Cmd {
	m.loading = true
	return m.doList()
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh
// interval, or nil when auto-refresh is disabled.
func (m *tuiModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *tuiModel) doList() tea.Cmd {
	eng := m.eng
	ctx := m.ctx
	return func() tea.Msg {
		sessions, err := eng.List(ctx)
		return sessionsMsg{sessions: sessions, err: err}
	}
}

// doPreview captures the selected session's most recent output.
func (m *tuiModel) doPreview() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return nil
	}
	name := m.sessions[m.cursor].Name
	eng := m.eng
	ctx := m.ctx
	return func() tea.Msg {
		result, err := eng.Capture(ctx, name, engine.CaptureOpts{})
		if err != nil {
			return previewMsg{session: name, err: err}
		}
		return previewMsg{session: name, lines: result.Output}
	}
}

func (m *tuiModel) selectedSession() string {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return ""
	}
	return m.sessions[m.cursor].Name
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionsMsg:
		m.loading = false
		if msg.err != nil {
			m.message = msg.err.Error()
			return m, m.scheduleTick()
		}
		m.sessions = msg.sessions
		if m.cursor >= len(m.sessions) {
			m.cursor = len(m.sessions) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, tea.Batch(m.doPreview(), m.scheduleTick())

	case previewMsg:
		if msg.session != m.selectedSession() {
			return m, nil // stale preview, cursor moved on
		}
		m.previewSession = msg.session
		if msg.err != nil {
			m.preview = []string{errorStyle.Render(msg.err.Error())}
			return m, nil
		}
		m.preview = msg.lines
		return m, nil

	case tickMsg:
		m.loading = true
		return m, m.doList()
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeTextInput {
		switch msg.String() {
		case "esc":
			m.mode = modeList
			m.textInput.Blur()
			return m, nil
		case "enter":
			command := strings.TrimSpace(m.textInput.Value())
			m.mode = modeList
			m.textInput.SetValue("")
			m.textInput.Blur()
			if command == "" || m.textTarget == "" {
				return m, nil
			}
			if _, err := m.eng.Execute(m.ctx, m.textTarget, m.textTarget, command); err != nil {
				m.message = fmt.Sprintf("exec failed: %v", err)
			} else {
				m.message = fmt.Sprintf("Sent %q to %s", command, m.textTarget)
			}
			m.loading = true
			return m, m.doList()
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.doPreview()

	case "down", "j":
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
		return m, m.doPreview()

	case "r":
		m.loading = true
		return m, m.doList()

	case "e", "enter":
		if name := m.selectedSession(); name != "" {
			m.mode = modeTextInput
			m.textTarget = name
			m.textInput.Focus()
		}
		return m, nil

	case "x":
		name := m.selectedSession()
		if name == "" {
			return m, nil
		}
		if _, err := m.eng.Kill(m.ctx, name, false); err != nil {
			m.message = fmt.Sprintf("kill failed: %v", err)
		} else {
			m.message = fmt.Sprintf("Killed %s", name)
			m.preview = nil
		}
		m.loading = true
		return m, m.doList()
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("termtap watch"))
	if m.loading {
		b.WriteString(dimStyle.Render("  refreshing..."))
	}
	b.WriteString("\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(dimStyle.Render("no sessions") + "\n")
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("  %-24s %-12s %-7s %s", "NAME", "TASK", "WINDOWS", "DESCRIPTION")) + "\n")
		for i, s := range m.sessions {
			taskType := string(s.TaskType)
			if taskType == "" {
				taskType = "oneshot"
			}
			line := fmt.Sprintf("  %-24s %-12s %-7d %s", s.Name, taskType, s.Windows, s.Description)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render(line))
			} else {
				b.WriteString(fmt.Sprintf("  %-24s %s %-7d %s",
					s.Name, taskStyle.Render(fmt.Sprintf("%-12s", taskType)), s.Windows, dimStyle.Render(s.Description)))
			}
			b.WriteString("\n")
		}
	}

	if len(m.preview) > 0 && m.previewSession == m.selectedSession() {
		b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("── output: %s ──", m.previewSession)) + "\n")
		lines := m.preview
		max := m.previewHeight()
		if len(lines) > max {
			lines = lines[len(lines)-max:]
		}
		for _, line := range lines {
			b.WriteString(previewStyle.Render(line) + "\n")
		}
	}

	if m.mode == modeTextInput {
		b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("exec in %s (esc to cancel):", m.textTarget)) + "\n")
		b.WriteString(m.textInput.View() + "\n")
	}

	b.WriteString("\n" + statusStyle.Render("↑/↓ select · e exec · x kill · r refresh · q quit"))
	if m.message != "" {
		b.WriteString("  " + dimStyle.Render(m.message))
	}
	b.WriteString("\n")
	return b.String()
}

// previewHeight bounds the output preview to what fits under the list.
func (m *tuiModel) previewHeight() int {
	const chrome = 8 // title, headers, status line
	h := m.height - len(m.sessions) - chrome
	if h < 3 {
		return 3
	}
	if h > 20 {
		return 20
	}
	return h
}
