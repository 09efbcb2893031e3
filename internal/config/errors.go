package config

import (
	"fmt"
	"strings"
)

// Violation is one rejected option value.
type Violation struct {
	Option  string
	Value   string
	Allowed []string
	Reason  string
}

func (v Violation) String() string {
	if v.Reason != "" {
		return fmt.Sprintf("%s: %s", v.Option, v.Reason)
	}
	return fmt.Sprintf("%s: %q is not one of [%s]", v.Option, v.Value, strings.Join(v.Allowed, ", "))
}

// ValidationError reports every option violation found during resolution.
// Resolution always checks the full table before returning, so the caller
// sees all problems at once rather than one per run.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid configuration: " + e.Violations[0].String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid configuration (%d problems):", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n  - " + v.String())
	}
	return b.String()
}

// MissingConfigError means a command that needs an existing project was
// run outside one: plume.yml is absent or unreadable.
type MissingConfigError struct {
	Path string
	Err  error
}

func (e *MissingConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no plume project found: cannot read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("no plume project found: %s does not exist (run 'plume new' first)", e.Path)
}

func (e *MissingConfigError) Unwrap() error {
	return e.Err
}
