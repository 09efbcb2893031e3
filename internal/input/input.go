// Package input provides the interactive prompts used by the
// scaffolding interview.
//
// Every prompt degrades gracefully: in a non-interactive session the
// caller should skip prompting entirely (see Interactive) and rely on
// flags and defaults.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// Interactive reports whether stdin is a terminal. The interview only
// runs when it is.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Prompt asks for free-form text with an optional default. Pressing
// Enter without typing returns the default.
//
// Example:
//
//	scope := input.Prompt("Package scope", "@acme")
//	// Displays: Package scope (@acme): _
func Prompt(message, defaultValue string) string {
	reader := bufio.NewReader(os.Stdin)

	if defaultValue != "" {
		fmt.Print(promptStyle.Render(message) + " " +
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue)) + ": ")
	} else {
		fmt.Print(promptStyle.Render(message) + ": ")
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}

// Confirm asks a yes/no question. Returns true for y/Y/yes/YES; Enter
// returns defaultYes.
func Confirm(message string, defaultYes bool) bool {
	reader := bufio.NewReader(os.Stdin)

	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	fmt.Print(promptStyle.Render(message) + " " +
		hintStyle.Render(hint) + ": ")

	line, err := reader.ReadString('\n')
	if err != nil {
		return defaultYes
	}

	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return defaultYes
	}
	return line == "y" || line == "yes"
}
