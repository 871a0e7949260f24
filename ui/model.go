package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/stardate/event"
	"github.com/drake/stardate/ui/style"
)

const maxLogLines = 1000

// StatusMsg carries a new status snapshot into the model.
type StatusMsg Status

// LineMsg appends a line to the log pane.
type LineMsg string

// Model is the Bubble Tea model: a status header, the script log and a
// command line opened with ':'.
type Model struct {
	status Status
	lines  []string

	viewport viewport.Model
	input    textinput.Model
	help     help.Model
	keys     keyMap
	styles   style.Styles

	commandMode bool
	commands    chan<- string

	width  int
	height int
}

// NewModel creates a model that emits session commands on commands.
func NewModel(commands chan<- string) Model {
	input := textinput.New()
	input.Prompt = ":"
	input.CharLimit = 256

	return Model{
		viewport: viewport.New(80, 20),
		input:    input,
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   style.DefaultStyles(),
		commands: commands,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-2) // header + footer
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case StatusMsg:
		m.status = Status(msg)
		return m, nil

	case LineMsg:
		follow := m.viewport.AtBottom()
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		if follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case tea.KeyMsg:
		if m.commandMode {
			return m.updateCommand(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.emit(event.ActionQuit)
		return m, tea.Quit
	case key.Matches(msg, m.keys.Faster):
		m.emit(event.ActionFaster)
	case key.Matches(msg, m.keys.Slower):
		m.emit(event.ActionSlower)
	case key.Matches(msg, m.keys.Pause):
		m.emit(event.ActionToggle)
	case key.Matches(msg, m.keys.Reload):
		m.emit(event.ActionReload)
	case key.Matches(msg, m.keys.Status):
		m.emit(event.ActionStatus)
	case key.Matches(msg, m.keys.Command):
		m.commandMode = true
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd
	default:
		// Scrolling keys go to the log pane
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.emit(m.input.Value())
		m.commandMode = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.commandMode = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// emit forwards a command without blocking the UI loop.
func (m Model) emit(command string) {
	select {
	case m.commands <- command:
	default:
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var footer string
	if m.commandMode {
		footer = m.styles.Prompt.Render(m.input.View())
	} else {
		footer = m.help.View(m.keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		footer,
	)
}

func (m Model) headerView() string {
	st := m.status

	rate := m.styles.Rate.Render(" " + st.RateLabel() + " ")
	if st.Paused {
		rate = m.styles.Paused.Render(" " + st.RateLabel() + " ")
	}

	left := m.styles.Date.Render(" "+st.Date.Format("2006-01-02 15:04:05")+" ") + rate
	right := m.styles.Timers.Render(FormatTimers(st) + " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + m.styles.Header.Render(strings.Repeat(" ", gap)) + right
}

// FormatTimers renders the timer half of the status header.
func FormatTimers(st Status) string {
	return strings.Join([]string{
		"pending " + formatCount(st.Pending),
		"next " + st.NextLabel(),
		"failed " + formatCount(int(st.Failed)),
	}, " · ")
}
