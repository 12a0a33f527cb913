package dialog

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Type string

const (
	Danger  Type = "danger"
	Warning Type = "warning"
	Info    Type = "info"
)

// Config describes a confirmation prompt. Empty fields take the defaults
// of a delete confirmation.
type Config struct {
	Title       string
	Message     string
	ItemName    string
	Type        Type
	ConfirmText string
	CancelText  string
	OnConfirm   func() error
	OnCancel    func()
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = "Confirm deletion"
	}
	if c.Message == "" {
		c.Message = "Are you sure you want to delete this item?"
	}
	if c.Type == "" {
		c.Type = Danger
	}
	if c.ConfirmText == "" {
		c.ConfirmText = "Delete"
	}
	if c.CancelText == "" {
		c.CancelText = "Cancel"
	}
	return c
}

// Result reports how the dialog was closed. Err is the error returned by
// OnConfirm.
type Result struct {
	Confirmed bool
	Err       error
}

type confirmDoneMsg struct {
	err error
}

type model struct {
	cfg     Config
	loading bool
	done    bool
	result  Result
}

func newModel(cfg Config) model {
	return model{cfg: cfg.withDefaults()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case confirmDoneMsg:
		m.loading = false
		m.done = true
		m.result = Result{Confirmed: true, Err: msg.err}
		return m, tea.Quit

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "y", "Y", "enter":
			if m.cfg.OnConfirm == nil {
				m.done = true
				m.result = Result{Confirmed: true}
				return m, tea.Quit
			}
			m.loading = true
			return m, runConfirm(m.cfg.OnConfirm)
		case "n", "N", "esc", "q", "ctrl+c":
			if m.cfg.OnCancel != nil {
				m.cfg.OnCancel()
			}
			m.done = true
			m.result = Result{}
			return m, tea.Quit
		}
	}
	return m, nil
}

func runConfirm(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return confirmDoneMsg{err: fn()}
	}
}

var accents = map[Type]lipgloss.Color{
	Danger:  lipgloss.Color("196"),
	Warning: lipgloss.Color("214"),
	Info:    lipgloss.Color("39"),
}

func (m model) View() string {
	if m.done {
		return ""
	}

	accent, ok := accents[m.cfg.Type]
	if !ok {
		accent = accents[Info]
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	itemStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.cfg.Title))
	b.WriteString("\n\n")
	b.WriteString(m.cfg.Message)
	if m.cfg.ItemName != "" {
		b.WriteString("\n")
		b.WriteString(itemStyle.Render(m.cfg.ItemName))
	}
	b.WriteString("\n\n")
	if m.loading {
		b.WriteString(hintStyle.Render("Working..."))
	} else {
		b.WriteString(hintStyle.Render(fmt.Sprintf("[y] %s  [n] %s", m.cfg.ConfirmText, m.cfg.CancelText)))
	}

	return boxStyle.Render(b.String()) + "\n"
}

// Confirm shows the dialog and blocks until it is closed.
func Confirm(cfg Config, opts ...tea.ProgramOption) (Result, error) {
	final, err := tea.NewProgram(newModel(cfg), opts...).Run()
	if err != nil {
		return Result{}, fmt.Errorf("failed to run dialog: %w", err)
	}
	return final.(model).result, nil
}
