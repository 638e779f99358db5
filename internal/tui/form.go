// Package tui is the terminal waitlist signup form.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/waitlist"
)

// Joiner submits a signup. *waitlist.Service implements it.
type Joiner interface {
	Join(ctx context.Context, email, useCase string) waitlist.Result
}

// Status of the form.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// SubmitTimeout bounds one Join call.
const SubmitTimeout = 10 * time.Second

type resultMsg waitlist.Result

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	choiceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B0D17")).Background(lipgloss.Color("#58FFE0")).Padding(0, 2)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FCA5A5")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#EF4444")).Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
)

// Model is the bubbletea model of the form.
type Model struct {
	joiner  Joiner
	email   textinput.Model
	useCase int // 0 is "no answer", i is waitlist.UseCases[i-1]
	status  Status
	message string
	width   int
}

// New builds a focused form submitting through joiner.
func New(joiner Joiner) Model {
	in := textinput.New()
	in.Placeholder = "you@example.com"
	in.CharLimit = 254
	in.Width = 40
	in.Prompt = "> "
	in.Focus()
	return Model{joiner: joiner, email: in}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Status reports where the form is in its submit cycle.
func (m Model) Status() Status { return m.status }

// Message is the banner text of the last outcome.
func (m Model) Message() string { return m.message }

// UseCase is the selected answer, "" when none.
func (m Model) UseCase() string {
	if m.useCase == 0 {
		return ""
	}
	return waitlist.UseCases[m.useCase-1]
}

// Email is the current text of the email field.
func (m Model) Email() string { return m.email.Value() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case resultMsg:
		res := waitlist.Result(msg)
		m.message = res.Message
		if res.OK() {
			m.status = StatusSuccess
			m.email.Reset()
			m.useCase = 0
			m.email.Blur()
		} else {
			m.status = StatusError
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.status {
		case StatusLoading:
			return m, nil
		case StatusSuccess:
			switch msg.String() {
			case "enter", "esc", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "esc":
			if m.status == StatusError {
				m.status, m.message = StatusIdle, ""
				return m, nil
			}
			return m, tea.Quit
		case "tab", "down":
			m.useCase = (m.useCase + 1) % (len(waitlist.UseCases) + 1)
			return m, nil
		case "shift+tab", "up":
			m.useCase = (m.useCase + len(waitlist.UseCases)) % (len(waitlist.UseCases) + 1)
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	email, useCase := m.email.Value(), m.UseCase()
	if !waitlist.ValidEmail(email) {
		m.status, m.message = StatusError, waitlist.MsgInvalid
		return m, nil
	}
	m.status, m.message = StatusLoading, ""
	joiner := m.joiner
	return m, func() tea.Msg {
		if joiner == nil {
			return resultMsg{Status: waitlist.Unconfigured, Message: waitlist.MsgUnconfigured}
		}
		ctx, cancel := context.WithTimeout(context.Background(), SubmitTimeout)
		defer cancel()
		return resultMsg(joiner.Join(ctx, email, useCase))
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Join the waitlist"))
	b.WriteString("\n")

	if m.status == StatusSuccess {
		b.WriteString(successStyle.Render(m.message))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("We'll reach out with early access. Press enter to exit."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(labelStyle.Render("Email address"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("How would you mainly use it? (optional, tab to change)"))
	b.WriteString("\n")
	if uc := m.UseCase(); uc != "" {
		b.WriteString(choiceStyle.Render("  " + uc))
	} else {
		b.WriteString(mutedStyle.Render("  no answer"))
	}
	b.WriteString("\n\n")

	if m.status == StatusLoading {
		b.WriteString(buttonStyle.Render("Joining..."))
	} else {
		b.WriteString(buttonStyle.Render("Join the waitlist"))
	}
	b.WriteString("\n")

	if m.status == StatusError {
		b.WriteString(errorStyle.Render(m.message + "  (esc to dismiss)"))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("No spam. Occasional build updates and an invite when we're ready."))
	b.WriteString("\n")
	return b.String()
}

// Run shows the form on the terminal until the user quits.
func Run(joiner Joiner, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(New(joiner), opts...).Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
