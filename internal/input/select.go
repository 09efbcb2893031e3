package input

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Select shows a keyboard-navigable menu and returns the chosen value.
// The cursor starts on defaultIndex; backing out with q or esc returns
// ErrCancelled.
func Select(message string, choices []string, defaultIndex int) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices for %q", message)
	}
	if defaultIndex < 0 || defaultIndex >= len(choices) {
		defaultIndex = 0
	}

	model := selectModel{
		message:      message,
		choices:      choices,
		cursor:       defaultIndex,
		defaultIndex: defaultIndex,
	}
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("failed to show menu: %w", err)
	}

	result := final.(selectModel)
	if result.chosen == nil {
		return "", ErrCancelled
	}
	return *result.chosen, nil
}

// selectModel is the bubbletea model for the choice menu.
type selectModel struct {
	message      string
	choices      []string
	cursor       int
	defaultIndex int
	chosen       *string
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "enter":
			choice := m.choices[m.cursor]
			m.chosen = &choice
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder

	b.WriteString(promptStyle.Render(m.message) + "\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")

	for i, choice := range m.choices {
		label := choice
		if i == m.defaultIndex {
			label += mutedStyle.Render(" (default)")
		}
		if m.cursor == i {
			b.WriteString("    " + selectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString("      " + label + "\n")
		}
	}

	return b.String()
}
