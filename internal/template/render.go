package template

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/config"
)

// Renderer renders loaded template nodes against a resolved context.
//
// Render is the dry pass the rest of the engine relies on: by the time
// it returns nodes, every condition has parsed and validated, every
// region guard has evaluated, every token has resolved, and no two
// templates target the same output path. Nothing is written here.
type Renderer struct {
	ctx  *config.Context
	vars Vars
}

// NewRenderer creates a renderer for one invocation.
func NewRenderer(ctx *config.Context) *Renderer {
	return &Renderer{ctx: ctx, vars: ContextVars(ctx)}
}

// BindSubject adds the six subject tokens for a generator run. Scaffold
// renders leave the subject unbound, so a stray subject token in the
// scaffold corpus surfaces as a PlaceholderError.
func (r *Renderer) BindSubject(raw string) {
	r.vars = SubjectVars(raw).merged(r.vars)
}

// Vars returns the token bindings of this render, for callers that
// substitute standalone fragments with the same bindings.
func (r *Renderer) Vars() Vars {
	return r.vars
}

// Render runs the dry pass over the nodes and returns the surviving
// output entries in tree order. All problems are collected into one
// *Problems error; partial results are never returned alongside it.
func (r *Renderer) Render(nodes []Node) ([]RenderedNode, error) {
	var out []RenderedNode
	var problems []error

	// seen maps final output paths to the template that produced them.
	seen := make(map[string]string)

	for _, node := range nodes {
		if node.When != "" {
			cond, err := ParseCondition(node.When)
			if err != nil {
				problems = append(problems, &RenderError{
					Path: node.Path, Line: node.whenLine,
					Detail: fmt.Sprintf("invalid condition %q: %v", node.When, err),
				})
				continue
			}
			if errs := conditionProblems(node.Path, node.whenLine, node.When, cond); len(errs) > 0 {
				problems = append(problems, errs...)
				continue
			}
			if !cond.Eval(r.ctx) {
				// The file is dropped, but its guard expressions must
				// still be valid: a template author's mistake should
				// not hide behind today's configuration.
				problems = append(problems, r.validateGuards(node)...)
				continue
			}
		}

		if node.Dir {
			path, errs := substitutePath(node.Path, r.vars)
			if len(errs) > 0 {
				problems = append(problems, errs...)
				continue
			}
			out = append(out, RenderedNode{Path: path, Dir: true})
			continue
		}

		content, errs := r.renderBody(node)
		problems = append(problems, errs...)

		path, perrs := substitutePath(node.Path, r.vars)
		if len(perrs) > 0 {
			problems = append(problems, perrs...)
			continue
		}

		if prev, dup := seen[path]; dup {
			problems = append(problems, &RenderError{
				Path:   node.Path,
				Detail: fmt.Sprintf("renders to %q, already produced by %s", path, prev),
			})
			continue
		}
		seen[path] = node.Path

		out = append(out, RenderedNode{Path: path, Content: content})
	}

	if len(problems) > 0 {
		return nil, &Problems{Items: problems}
	}

	return pruneEmptyDirs(out), nil
}

// renderBody strips region guards and substitutes tokens in the
// surviving spans.
func (r *Renderer) renderBody(node Node) ([]byte, []error) {
	stripped, errs := r.applyGuards(node)
	content, serrs := substituteContent(node.Path, stripped, r.vars)
	return content, append(errs, serrs...)
}

// applyGuards evaluates region guards line by line. Guard lines are
// removed from the output; lines inside a false region are dropped.
// Guards nest, and inner guards are validated even when an outer guard
// already excluded them.
func (r *Renderer) applyGuards(node Node) ([]byte, []error) {
	if !bytes.Contains(node.Content, []byte(guardOpen)) {
		return node.Content, nil
	}

	var errs []error
	var stack []bool

	active := func() bool {
		for _, a := range stack {
			if !a {
				return false
			}
		}
		return true
	}

	lines := strings.Split(string(node.Content), "\n")
	kept := make([]string, 0, len(lines))

	for i, raw := range lines {
		lineNo := node.lineOffset + i + 1
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, guardOpen) {
			expr, ok := guardExpression(trimmed)
			if !ok {
				// Load already rejected malformed guards; keep the
				// stack balanced if one slips through.
				stack = append(stack, false)
				continue
			}
			cond, err := ParseCondition(expr)
			if err != nil {
				errs = append(errs, &RenderError{
					Path: node.Path, Line: lineNo,
					Detail: fmt.Sprintf("invalid condition %q: %v", expr, err),
				})
				stack = append(stack, false)
				continue
			}
			if cerrs := conditionProblems(node.Path, lineNo, expr, cond); len(cerrs) > 0 {
				errs = append(errs, cerrs...)
				stack = append(stack, false)
				continue
			}
			stack = append(stack, cond.Eval(r.ctx))
			continue
		}

		if trimmed == guardClose {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if active() {
			kept = append(kept, raw)
		}
	}

	return []byte(strings.Join(kept, "\n")), errs
}

// validateGuards parses and validates every guard expression of a file
// without evaluating or stripping anything. Used for files excluded by
// their frontmatter condition.
func (r *Renderer) validateGuards(node Node) []error {
	if !bytes.Contains(node.Content, []byte(guardOpen)) {
		return nil
	}

	var errs []error
	for i, raw := range strings.Split(string(node.Content), "\n") {
		trimmed := strings.TrimSpace(raw)
		if !strings.HasPrefix(trimmed, guardOpen) {
			continue
		}
		expr, ok := guardExpression(trimmed)
		if !ok {
			continue
		}
		lineNo := node.lineOffset + i + 1
		cond, err := ParseCondition(expr)
		if err != nil {
			errs = append(errs, &RenderError{
				Path: node.Path, Line: lineNo,
				Detail: fmt.Sprintf("invalid condition %q: %v", expr, err),
			})
			continue
		}
		errs = append(errs, conditionProblems(node.Path, lineNo, expr, cond)...)
	}
	return errs
}

// conditionProblems wraps table violations of a parsed condition into
// RenderErrors.
func conditionProblems(path string, line int, expr string, cond *Condition) []error {
	probs := cond.Problems()
	if len(probs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(probs))
	for _, p := range probs {
		errs = append(errs, &RenderError{
			Path: path, Line: line,
			Detail: fmt.Sprintf("condition %q: %s", expr, p),
		})
	}
	return errs
}

// pruneEmptyDirs drops directory nodes with no surviving descendant
// files. A feature excluded by configuration takes its directories
// with it.
func pruneEmptyDirs(nodes []RenderedNode) []RenderedNode {
	hasFile := func(dir string) bool {
		prefix := dir + "/"
		for _, n := range nodes {
			if !n.Dir && strings.HasPrefix(n.Path, prefix) {
				return true
			}
		}
		return false
	}

	out := make([]RenderedNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Dir && !hasFile(n.Path) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// SubstituteString resolves every token in a standalone string with the
// given bindings. Insertion fragments go through here so they use the
// exact vars the templates rendered with.
func SubstituteString(name, text string, vars Vars) (string, error) {
	out, errs := substituteContent(name, []byte(text), vars)
	if len(errs) > 0 {
		return "", &Problems{Items: errs}
	}
	return string(out), nil
}
