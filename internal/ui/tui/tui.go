package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PI-33/text2sql/internal/pipeline"
)

// AskFunc runs one pipeline turn for the given question.
type AskFunc func(ctx context.Context, question string) *pipeline.Turn

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F87FF")).
			Italic(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type turnMsg *pipeline.Turn

type Model struct {
	Title    string
	Input    textinput.Model
	Viewport viewport.Model
	History  []string
	Busy     bool
	Ready    bool
	Quitting bool
	Width    int
	Height   int

	ask AskFunc
}

func NewModel(title string, ask AskFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your data..."
	ti.Focus()
	ti.CharLimit = 512

	return Model{
		Title: title,
		Input: ti,
		ask:   ask,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.Input.Value())
			if question == "" || m.Busy {
				break
			}
			m.Input.Reset()
			m.Busy = true
			m.appendLine(userStyle.Render("You: ") + question)
			ask := m.ask
			cmds = append(cmds, func() tea.Msg {
				return turnMsg(ask(context.Background(), question))
			})
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-5)
			m.Viewport.SetContent(strings.Join(m.History, "\n"))
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - 5
		}

	case turnMsg:
		m.Busy = false
		for _, reply := range (*pipeline.Turn)(msg).Replies {
			if reply.Text != "" {
				m.appendLine(botStyle.Render("Bot: " + reply.Text))
			}
			if reply.ImagePath != "" {
				m.appendLine(imageStyle.Render("     [chart saved to " + reply.ImagePath + "]"))
			}
		}
		m.appendLine("")
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLine(line string) {
	m.History = append(m.History, line)
	if m.Ready {
		m.Viewport.SetContent(strings.Join(m.History, "\n"))
		m.Viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if !m.Ready {
		return "\n  Initializing..."
	}

	header := titleStyle.Render(fmt.Sprintf(" %s ", m.Title))
	status := ""
	if m.Busy {
		status = hintStyle.Render(" thinking... ")
	}
	hint := hintStyle.Render("enter to ask, esc to quit")

	view := fmt.Sprintf("%s%s\n\n%s\n\n%s\n%s",
		header, status,
		m.Viewport.View(),
		m.Input.View(),
		hint)

	if m.Quitting {
		return view + "\n  Bye.\n"
	}

	return view
}
