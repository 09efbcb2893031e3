package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// fence delimits a frontmatter block. A template file whose first line
// is the fence must close it with a second fence line.
const fence = "---"

// Load walks a template tree and returns one Node per entry, in lexical
// path order. Frontmatter blocks are parsed and stripped here; region
// guards are checked for balance but evaluated later, at render time.
//
// Load never stops at the first broken template. All load problems come
// back together in a *Problems error.
func Load(fsys fs.FS, root string) ([]Node, error) {
	var nodes []Node
	var problems []error

	walkErr := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &LoadError{Path: path, Err: err, Detail: "walking template tree"}
		}
		if path == root {
			return nil
		}

		rel := relativeTo(path, root)

		if d.IsDir() {
			nodes = append(nodes, Node{Path: rel, Dir: true})
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			problems = append(problems, &LoadError{Path: rel, Err: err, Detail: "reading template"})
			return nil
		}

		node, errs := parseFile(rel, content)
		if len(errs) > 0 {
			problems = append(problems, errs...)
			return nil
		}
		nodes = append(nodes, node)
		return nil
	})
	if walkErr != nil {
		var lerr *LoadError
		if errors.As(walkErr, &lerr) {
			return nil, lerr
		}
		return nil, &LoadError{Path: root, Err: walkErr, Detail: "walking template tree"}
	}

	if len(problems) > 0 {
		return nil, &Problems{Items: problems}
	}
	return nodes, nil
}

// relativeTo strips the tree root from a walked path.
func relativeTo(path, root string) string {
	if root == "." || root == "" {
		return path
	}
	return strings.TrimPrefix(path, root+"/")
}

// parseFile splits off the frontmatter block and checks region guards.
func parseFile(path string, content []byte) (Node, []error) {
	node := Node{Path: path}

	body, when, whenLine, err := splitFrontmatter(path, content)
	if err != nil {
		return Node{}, []error{err}
	}
	node.Content = body
	node.When = when
	node.whenLine = whenLine
	node.lineOffset = bodyOffset(content, body)

	if errs := checkGuards(path, body, node.lineOffset); len(errs) > 0 {
		return Node{}, errs
	}
	return node, nil
}

// splitFrontmatter removes a leading fence-delimited block and returns
// the remaining body plus the when: expression, if any. Files that do
// not start with the fence pass through untouched.
func splitFrontmatter(path string, content []byte) (body []byte, when string, whenLine int, err error) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || strings.TrimRight(string(lines[0]), "\r\n") != fence {
		return content, "", 0, nil
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(string(lines[i]), "\r\n") == fence {
			closing = i
			break
		}
	}
	if closing < 0 {
		return nil, "", 0, &LoadError{Path: path, Line: 1, Detail: "frontmatter block is never closed"}
	}

	block := bytes.Join(lines[1:closing], nil)

	var fm struct {
		When string `yaml:"when"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(block))
	dec.KnownFields(true)
	if err := dec.Decode(&fm); err != nil && err != io.EOF {
		return nil, "", 0, &LoadError{Path: path, Line: 2, Detail: fmt.Sprintf("invalid frontmatter: %v", err)}
	}

	line := 0
	if fm.When != "" {
		// Locate the when: line for error reporting.
		for i := 1; i < closing; i++ {
			if strings.HasPrefix(strings.TrimSpace(string(lines[i])), "when:") {
				line = i + 1
				break
			}
		}
	}

	return bytes.Join(lines[closing+1:], nil), fm.When, line, nil
}

// bodyOffset returns how many lines the frontmatter consumed, so guard
// errors report positions in the original file.
func bodyOffset(original, body []byte) int {
	if len(original) == len(body) {
		return 0
	}
	trimmed := original[:len(original)-len(body)]
	return bytes.Count(trimmed, []byte("\n"))
}

const (
	guardOpen  = "{{#when"
	guardClose = "{{/when}}"
)

// checkGuards verifies that every region guard is well formed and that
// opens and closes balance. Guard expressions are not evaluated here.
func checkGuards(path string, body []byte, lineOffset int) []error {
	var errs []error
	var openLines []int

	for i, raw := range strings.Split(string(body), "\n") {
		line := lineOffset + i + 1
		trimmed := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(trimmed, guardOpen):
			if _, ok := guardExpression(trimmed); !ok {
				errs = append(errs, &LoadError{Path: path, Line: line, Detail: "malformed region guard (want {{#when expr}})"})
				continue
			}
			openLines = append(openLines, line)

		case strings.HasPrefix(trimmed, "{{/when"):
			if trimmed != guardClose {
				errs = append(errs, &LoadError{Path: path, Line: line, Detail: "malformed region guard close (want {{/when}})"})
				continue
			}
			if len(openLines) == 0 {
				errs = append(errs, &LoadError{Path: path, Line: line, Detail: "{{/when}} without a matching {{#when}}"})
				continue
			}
			openLines = openLines[:len(openLines)-1]
		}
	}

	for _, line := range openLines {
		errs = append(errs, &LoadError{Path: path, Line: line, Detail: "{{#when}} is never closed"})
	}
	return errs
}

// guardExpression extracts the expression from a well-formed open guard
// line. The sigil must be followed by whitespace, so {{#whenever}} is
// not a guard.
func guardExpression(trimmed string) (string, bool) {
	if !strings.HasPrefix(trimmed, guardOpen) || !strings.HasSuffix(trimmed, "}}") {
		return "", false
	}
	rest := trimmed[len(guardOpen) : len(trimmed)-2]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	expr := strings.TrimSpace(rest)
	if expr == "" {
		return "", false
	}
	return expr, true
}
