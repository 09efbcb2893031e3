// Package exec runs the handful of external commands plume shells out
// to, with spinner feedback for the slow ones. Generated projects are
// left to install their own dependencies; the only tool invoked during
// scaffolding is git.
package exec

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
	dir    string

	// For mocking in tests
	commandFunc func(name string, args ...string) *exec.Cmd
}

// Options configures command execution.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // additional environment variables
	Dir    string   // working directory
}

// NewExecutor creates an executor. A nil opts runs commands against
// the process's stdout and stderr.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		commandFunc: exec.Command,
	}
}

// Run executes a command and waits for it. Cancellation kills the
// process.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.commandFunc(name, args...)

	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	if err := cmd.Start(); err != nil {
		if isCommandNotFound(err) {
			return notFoundError(err, name)
		}
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	case err := <-errCh:
		if err != nil {
			if isCommandNotFound(err) {
				return notFoundError(err, name)
			}
			return fmt.Errorf("%s failed: %w", name, err)
		}
		return nil
	}
}

// RunWithSpinner runs a command behind a spinner, discarding the
// command's own output. Used for commands whose chatter would clutter
// the scaffold report.
func (e *Executor) RunWithSpinner(ctx context.Context, message string, name string, args ...string) error {
	stdoutPipe, stdoutWriter := io.Pipe()
	stderrPipe, stderrWriter := io.Pipe()

	piped := &Executor{
		stdout:      stdoutWriter,
		stderr:      stderrWriter,
		env:         e.env,
		dir:         e.dir,
		commandFunc: e.commandFunc,
	}

	done := make(chan error, 1)
	go func() {
		err := piped.Run(ctx, name, args...)
		stdoutWriter.Close()
		stderrWriter.Close()
		done <- err
	}()

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr))
	go func() {
		if _, err := p.Run(); err != nil {
			_ = err
		}
	}()

	go io.Copy(io.Discard, stdoutPipe)
	go io.Copy(io.Discard, stderrPipe)

	err := <-done

	p.Send(doneMsg{err: err})
	// Give the spinner a frame to render its final state.
	time.Sleep(50 * time.Millisecond)
	p.Quit()

	return err
}

// GitInit initializes a git repository in dir.
func (e *Executor) GitInit(ctx context.Context, dir string) error {
	git := &Executor{
		stdout:      e.stdout,
		stderr:      e.stderr,
		env:         e.env,
		dir:         dir,
		commandFunc: e.commandFunc,
	}
	return git.RunWithSpinner(ctx, "Initializing git repository", "git", "init")
}

// spinnerModel is the bubbletea model for the spinner.
type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type doneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	return err == exec.ErrNotFound ||
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(err.Error(), "command not found")
}

func notFoundError(err error, cmd string) error {
	return fmt.Errorf("%w\n💡 Command '%s' not found. Please install it and try again", err, cmd)
}
