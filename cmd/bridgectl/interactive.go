package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/dllbridge/client"
	"github.com/wippyai/dllbridge/protocol"
	"github.com/wippyai/dllbridge/signature"
)

const maxHistory = 50

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err     error
	client  *client.Client
	addr    string
	history []entry
	input   textinput.Model
	timeout time.Duration
	recall  int
	state   modelState
}

// entry is one completed request in the history view
type entry struct {
	err     error
	request string
	preview string
	result  string
}

type modelState int

const (
	stateConnecting modelState = iota
	stateReady
	stateWaiting
)

func newInteractiveModel(addr string, timeout time.Duration) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "call helloworld sig:void -> int"
	ti.Prompt = "> "
	ti.Width = 72
	ti.Focus()

	return &interactiveModel{
		addr:    addr,
		input:   ti,
		timeout: timeout,
		recall:  -1,
		state:   stateConnecting,
	}
}

type connectedMsg struct {
	err    error
	client *client.Client
}

type callResultMsg struct {
	err     error
	request string
	preview string
	result  string
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.connect, textinput.Blink)
}

func (m *interactiveModel) connect() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, m.addr)
	return connectedMsg{client: c, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.client != nil {
				m.client.Close()
			}
			return m, tea.Quit

		case "up":
			if m.state == stateReady && m.recall < len(m.history)-1 {
				m.recall++
				m.input.SetValue(m.history[len(m.history)-1-m.recall].request)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.state == stateReady && m.recall >= 0 {
				m.recall--
				if m.recall < 0 {
					m.input.SetValue("")
				} else {
					m.input.SetValue(m.history[len(m.history)-1-m.recall].request)
				}
				m.input.CursorEnd()
			}
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if m.state != stateReady || line == "" {
				return m, nil
			}
			m.state = stateWaiting
			m.recall = -1
			m.input.SetValue("")
			return m, m.send(line)
		}

	case connectedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.client = msg.client
		m.state = stateReady

	case callResultMsg:
		m.history = append(m.history, entry(msg))
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		var remote *client.RemoteError
		if msg.err != nil && !stderrors.As(msg.err, &remote) {
			// the connection is unusable after a transport error
			m.client.Close()
			m.client = nil
			m.state = stateConnecting
			return m, m.connect
		}
		m.state = stateReady
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send returns a command performing one request. Only one runs at a time;
// the model ignores enter while waiting.
func (m *interactiveModel) send(line string) tea.Cmd {
	c := m.client
	preview := describe(line)
	return func() tea.Msg {
		resp, err := do(context.Background(), c, m.timeout, line)
		return callResultMsg{request: line, preview: preview, result: resp, err: err}
	}
}

// describe renders the function and WIT type a request line declares, or
// an empty string if the line does not parse.
func describe(line string) string {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		return ""
	}
	sig, err := signature.Parse(req.Signature)
	if err != nil {
		return ""
	}
	return funcStyle.Render(req.Function) + ": " + typeStyle.Render(sig.WIT())
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}

	if m.state == stateConnecting {
		return "Connecting to " + m.addr + "..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge Client"))
	b.WriteString(" ")
	b.WriteString(m.addr)
	b.WriteString("\n\n")

	for i, e := range m.history {
		req := e.request
		if m.recall >= 0 && i == len(m.history)-1-m.recall {
			req = selectedStyle.Render(req)
		}
		b.WriteString(req)
		b.WriteString("\n")
		if e.preview != "" {
			b.WriteString("  ")
			b.WriteString(e.preview)
			b.WriteString("\n")
		}
		b.WriteString("  ")
		if e.err != nil {
			b.WriteString(errorStyle.Render(protocol.ErrorPrefix + errorText(e.err)))
		} else {
			b.WriteString(resultStyle.Render(e.result))
		}
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if preview := describe(m.input.Value()); preview != "" {
		b.WriteString("  ")
		b.WriteString(preview)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.state == stateWaiting {
		b.WriteString(helpStyle.Render("waiting for response..."))
	} else {
		b.WriteString(helpStyle.Render("enter send • ↑/↓ history • esc quit"))
	}

	return b.String()
}

func errorText(err error) string {
	var remote *client.RemoteError
	if stderrors.As(err, &remote) {
		return remote.Message
	}
	return err.Error()
}

func runInteractive(addr string, timeout time.Duration) error {
	p := tea.NewProgram(newInteractiveModel(addr, timeout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
