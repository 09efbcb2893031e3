package materialize

import (
	"fmt"
	"strings"
)

// Conflict is one destination path that already exists with different
// content. Existing and Incoming carry both sides so the CLI can show a
// diff; Detail is set instead when the mismatch is structural (a
// directory in the way of a file or the reverse).
type Conflict struct {
	Path     string
	Existing []byte
	Incoming []byte
	Detail   string
}

// ConflictError reports every conflict found while planning. Nothing
// has been written when this error is returned.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		c := e.Conflicts[0]
		if c.Detail != "" {
			return fmt.Sprintf("conflict: %s: %s", c.Path, c.Detail)
		}
		return fmt.Sprintf("conflict: %s already exists with different content", c.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d conflicts:", len(e.Conflicts))
	for _, c := range e.Conflicts {
		if c.Detail != "" {
			fmt.Fprintf(&b, "\n  - %s (%s)", c.Path, c.Detail)
		} else {
			fmt.Fprintf(&b, "\n  - %s", c.Path)
		}
	}
	return b.String()
}

// Paths lists the conflicting paths in plan order.
func (e *ConflictError) Paths() []string {
	paths := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		paths = append(paths, c.Path)
	}
	return paths
}
