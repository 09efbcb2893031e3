package template

import (
	"fmt"
	"strings"
)

// LoadError reports a template tree that cannot be loaded: a missing
// root, an unreadable file, a broken frontmatter fence, or unbalanced
// region guards. These are template-author mistakes, caught before any
// rendering starts.
type LoadError struct {
	Path   string
	Line   int
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("template %s:%d: %s", e.Path, e.Line, e.Detail)
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("template %s: %s: %v", e.Path, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("template %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("template %s: %s", e.Path, e.Detail)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RenderError reports a directive that cannot be evaluated: a condition
// with a syntax error, an unknown option, or a value outside the
// option's domain. Also covers two templates rendering to the same
// output path.
type RenderError struct {
	Path   string
	Line   int
	Detail string
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template %s:%d: %s", e.Path, e.Line, e.Detail)
	}
	return fmt.Sprintf("template %s: %s", e.Path, e.Detail)
}

// PlaceholderError reports a __token__ with no binding in the current
// render: a misspelled token, a subject token outside a generator
// bundle, or an option token whose option is absent from the context.
type PlaceholderError struct {
	Path  string
	Line  int
	Token string
}

func (e *PlaceholderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template %s:%d: unresolved placeholder __%s__", e.Path, e.Line, e.Token)
	}
	return fmt.Sprintf("template %s: unresolved placeholder __%s__ in path", e.Path, e.Token)
}

// Problems aggregates every failure found by a dry pass. Rendering
// never stops at the first problem; the caller gets the complete list.
type Problems struct {
	Items []error
}

func (e *Problems) Error() string {
	if len(e.Items) == 1 {
		return e.Items[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d template problems:", len(e.Items))
	for _, item := range e.Items {
		b.WriteString("\n  - " + item.Error())
	}
	return b.String()
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *Problems) Unwrap() []error {
	return e.Items
}
