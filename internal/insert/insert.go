// Package insert splices generated fragments into existing files.
//
// Generators extend aggregator files (router indexes, schema files,
// navigation lists) through declared insertion points. All strategies
// are anchor-based text operations on lines; nothing here parses the
// target language. The functions are pure: callers read the target,
// apply, and write back, so each insertion stays one atomic file
// replacement.
package insert

import (
	"fmt"
	"strings"
)

// Strategy selects how a fragment lands relative to its anchor.
type Strategy string

const (
	// BeforeAnchor places the fragment immediately before the first
	// line containing the anchor.
	BeforeAnchor Strategy = "before-anchor"

	// AfterAnchor places the fragment immediately after the first line
	// containing the anchor.
	AfterAnchor Strategy = "after-anchor"

	// AppendToList places the fragment at the end of the region
	// between the anchor line and the end-marker line, skipping the
	// insertion when the fragment is already inside the region.
	AppendToList Strategy = "append-to-list-between-markers"
)

// Known reports whether s is one of the defined strategies.
func (s Strategy) Known() bool {
	switch s {
	case BeforeAnchor, AfterAnchor, AppendToList:
		return true
	}
	return false
}

// Point declares one insertion a generator wants to make. Target and
// Fragment may contain __token__ placeholders; the engine substitutes
// them before applying.
type Point struct {
	Target    string
	Strategy  Strategy
	Anchor    string
	EndMarker string // AppendToList only
	Fragment  string
	When      string // optional condition gating the point
}

// AnchorError means the target file, the anchor, or the end marker
// was not found. The run downgrades this to a warning and prints the
// fragment for manual application, unless --strict-anchors is set.
type AnchorError struct {
	Target string
	Anchor string // empty when the target file itself is missing
	Detail string
}

func (e *AnchorError) Error() string {
	what := e.Detail
	if what == "" {
		what = "anchor"
	}
	if e.Anchor == "" {
		return fmt.Sprintf("%s: %s not found", e.Target, what)
	}
	return fmt.Sprintf("%s: %s %q not found", e.Target, what, e.Anchor)
}

// Apply splices fragment into content per the point's strategy. The
// second return reports whether content changed: AppendToList leaves
// the content untouched when the fragment is already present between
// the markers.
func Apply(content []byte, p Point, fragment string) ([]byte, bool, error) {
	lines := strings.SplitAfter(string(content), "\n")
	block := fragmentBlock(fragment)

	switch p.Strategy {
	case BeforeAnchor, AfterAnchor:
		idx := findLine(lines, p.Anchor)
		if idx < 0 {
			return nil, false, &AnchorError{Target: p.Target, Anchor: p.Anchor}
		}
		at := idx
		if p.Strategy == AfterAnchor {
			at = idx + 1
		}
		return joinAt(lines, at, block), true, nil

	case AppendToList:
		open := findLine(lines, p.Anchor)
		if open < 0 {
			return nil, false, &AnchorError{Target: p.Target, Anchor: p.Anchor}
		}
		rel := findLine(lines[open+1:], p.EndMarker)
		if rel < 0 {
			return nil, false, &AnchorError{Target: p.Target, Anchor: p.EndMarker, Detail: "end marker"}
		}
		end := open + 1 + rel

		if regionContains(lines[open+1:end], block) {
			return content, false, nil
		}
		return joinAt(lines, end, block), true, nil

	default:
		return nil, false, fmt.Errorf("unknown insertion strategy %q", p.Strategy)
	}
}

// fragmentBlock splits a fragment into lines, each with a trailing
// newline, dropping a trailing empty line.
func fragmentBlock(fragment string) []string {
	lines := strings.SplitAfter(fragment, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		if !strings.HasSuffix(l, "\n") {
			lines[i] = l + "\n"
		}
	}
	return lines
}

// findLine returns the index of the first line containing needle, -1
// when absent.
func findLine(lines []string, needle string) int {
	for i, l := range lines {
		if strings.Contains(l, needle) {
			return i
		}
	}
	return -1
}

// joinAt rebuilds the file with block inserted before lines[at].
func joinAt(lines []string, at int, block []string) []byte {
	var b strings.Builder
	for _, l := range lines[:at] {
		b.WriteString(l)
	}
	for _, l := range block {
		b.WriteString(l)
	}
	for _, l := range lines[at:] {
		b.WriteString(l)
	}
	return []byte(b.String())
}

// regionContains reports whether the fragment already appears inside
// the region, comparing whole trimmed lines so a list entry never
// matches a longer entry it happens to prefix.
func regionContains(region, block []string) bool {
	if len(block) == 0 {
		return true
	}
	for i := 0; i+len(block) <= len(region); i++ {
		match := true
		for j := range block {
			if strings.TrimSpace(region[i+j]) != strings.TrimSpace(block[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
