// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kestrel Aerospace

package cmd

import (
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var consoleAddr string

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive operator console",
	Long: `Connect to a running ground station as an operator.

Commands typed at the prompt go to the service verbatim; replies and
streamed log records appear in the scrollback. Type 'help' for the
command set. Ctrl+C exits.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consoleAddr, "connect", "localhost:4444", "Ground station operator address")
	rootCmd.AddCommand(consoleCmd)
}

// Messages
type serverTextMsg string
type connectionLostMsg struct{ err error }

// Styles
var (
	consoleTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	consolePromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	consoleSentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	consoleErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// consoleModel is the operator console TUI state.
type consoleModel struct {
	conn     net.Conn
	addr     string
	viewport viewport.Model
	input    textinput.Model
	lines    []string
	ready    bool
	lost     bool
	lostErr  error
	quitting bool
}

func initialConsoleModel(conn net.Conn, addr string) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "type a command, 'help' for the list"
	ti.Prompt = consolePromptStyle.Render("> ")
	ti.Focus()
	ti.CharLimit = 256

	return consoleModel{
		conn:  conn,
		addr:  addr,
		input: ti,
		lines: []string{},
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text != "" && !m.lost {
				if _, err := m.conn.Write([]byte(text)); err != nil {
					m.lost = true
					m.lostErr = err
				} else {
					m.appendLine(consoleSentStyle.Render("> " + text))
				}
				m.input.SetValue("")
			}
		}

	case serverTextMsg:
		for _, line := range strings.Split(string(msg), "\n") {
			m.appendLine(line)
		}

	case connectionLostMsg:
		m.lost = true
		m.lostErr = msg.err
		m.appendLine(consoleErrStyle.Render("connection lost"))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *consoleModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshViewport()
}

func (m *consoleModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m consoleModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "connecting...\n"
	}

	title := consoleTitleStyle.Render(fmt.Sprintf("Groundlink Console — %s", m.addr))
	return fmt.Sprintf("%s\n%s\n%s", title, m.viewport.View(), m.input.View())
}

func runConsole(cmd *cobra.Command, args []string) error {
	conn, err := net.Dial("tcp", consoleAddr)
	if err != nil {
		return fmt.Errorf("cannot reach ground station at %s: %w", consoleAddr, err)
	}
	defer conn.Close()

	m := initialConsoleModel(conn, consoleAddr)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Socket reader feeds the TUI.
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				p.Send(connectionLostMsg{err: err})
				return
			}
			if n > 0 {
				p.Send(serverTextMsg(string(buf[:n])))
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
