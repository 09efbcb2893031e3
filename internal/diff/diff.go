// Package diff renders unified diffs between a file on disk and the
// content a render would put there.
//
// The conflict report prints these diffs so the user can judge whether
// --force is safe. Lines are styled with lipgloss and wrapped to the
// terminal width.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	contextLines = 3
	tabWidth     = 4
	maxDiffLines = 10000
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

// Unified diffs the existing file content against the generated content
// and returns a styled unified diff. Identical inputs yield "".
func Unified(path string, existing, generated []byte) string {
	if bytes.Equal(existing, generated) {
		return ""
	}

	if isBinary(existing) || isBinary(generated) {
		return "Binary files differ\n"
	}

	oldLines := splitLines(string(existing))
	newLines := splitLines(string(generated))

	if len(oldLines) > maxDiffLines || len(newLines) > maxDiffLines {
		return fmt.Sprintf("Files too large for diff (%d and %d lines)\n", len(oldLines), len(newLines))
	}

	edits := editScript(oldLines, newLines)
	hunks := buildHunks(edits)
	if len(hunks) == 0 {
		return ""
	}

	width := terminalWidth()

	var buf strings.Builder
	buf.WriteString(headerStyle.Render("--- "+path+" (on disk)") + "\n")
	buf.WriteString(headerStyle.Render("+++ "+path+" (generated)") + "\n")
	for _, h := range hunks {
		writeHunk(&buf, h, width)
	}
	return buf.String()
}

type op int

const (
	opKeep op = iota
	opAdd
	opDel
)

// edit is one line of the shortest edit script.
type edit struct {
	op      op
	oldLine int // 1-based, 0 when added
	newLine int // 1-based, 0 when removed
	text    string
}

// editScript computes the shortest edit script between two line slices
// using the Myers O(ND) algorithm.
func editScript(old, newer []string) []edit {
	n, m := len(old), len(newer)
	maxD := n + m
	offset := maxD

	// v[k+offset] is the furthest x on diagonal k after d steps.
	v := make([]int, 2*maxD+2)
	var trace [][]int

	d := 0
search:
	for ; d <= maxD; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1+offset] < v[k+1+offset]) {
				x = v[k+1+offset]
			} else {
				x = v[k-1+offset] + 1
			}
			y := x - k
			for x < n && y < m && old[x] == newer[y] {
				x++
				y++
			}
			v[k+offset] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	// Backtrack from (n, m) through the trace, collecting edits in
	// reverse.
	var reversed []edit
	x, y := n, m
	for ; d > 0; d-- {
		prev := trace[d-1]
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[k-1+offset] < prev[k+1+offset]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[prevK+offset]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			reversed = append(reversed, edit{op: opKeep, oldLine: x + 1, newLine: y + 1, text: old[x]})
		}

		if x == prevX {
			y--
			reversed = append(reversed, edit{op: opAdd, newLine: y + 1, text: newer[y]})
		} else {
			x--
			reversed = append(reversed, edit{op: opDel, oldLine: x + 1, text: old[x]})
		}
	}
	for x > 0 && y > 0 {
		x--
		y--
		reversed = append(reversed, edit{op: opKeep, oldLine: x + 1, newLine: y + 1, text: old[x]})
	}

	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	return reversed
}

// hunk is a contiguous run of changes with surrounding context.
type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	edits              []edit
}

// buildHunks groups the edit script into hunks, keeping contextLines of
// unchanged lines around each run of changes.
func buildHunks(edits []edit) []hunk {
	var hunks []hunk
	var current *hunk

	flush := func() {
		if current == nil {
			return
		}
		finalize(current)
		hunks = append(hunks, *current)
		current = nil
	}

	for i, e := range edits {
		if e.op == opKeep {
			if current == nil {
				continue
			}
			// Close the hunk when enough unchanged lines separate it
			// from the next change.
			next := nextChange(edits, i)
			if next < 0 || next-i > contextLines*2 {
				end := i + contextLines
				for j := i; j < end && j < len(edits) && edits[j].op == opKeep; j++ {
					current.edits = append(current.edits, edits[j])
				}
				flush()
				continue
			}
			current.edits = append(current.edits, e)
			continue
		}

		if current == nil {
			current = &hunk{}
			start := i - contextLines
			if start < 0 {
				start = 0
			}
			for j := start; j < i; j++ {
				current.edits = append(current.edits, edits[j])
			}
		}
		current.edits = append(current.edits, e)
	}
	flush()

	return hunks
}

// nextChange returns the index of the next non-keep edit at or after i,
// or -1.
func nextChange(edits []edit, i int) int {
	for ; i < len(edits); i++ {
		if edits[i].op != opKeep {
			return i
		}
	}
	return -1
}

func finalize(h *hunk) {
	for _, e := range h.edits {
		if e.oldLine > 0 && (h.oldStart == 0 || e.oldLine < h.oldStart) {
			h.oldStart = e.oldLine
		}
		if e.newLine > 0 && (h.newStart == 0 || e.newLine < h.newStart) {
			h.newStart = e.newLine
		}
		if e.op != opAdd {
			h.oldCount++
		}
		if e.op != opDel {
			h.newCount++
		}
	}
}

func writeHunk(buf *strings.Builder, h hunk, width int) {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
	buf.WriteString(hunkStyle.Render(header) + "\n")

	for _, e := range h.edits {
		text := truncate(expandTabs(e.text), width-2)
		switch e.op {
		case opAdd:
			buf.WriteString(addedStyle.Render("+"+text) + "\n")
		case opDel:
			buf.WriteString(removedStyle.Render("-"+text) + "\n")
		default:
			buf.WriteString(" " + text + "\n")
		}
	}
}

func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) != -1
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var buf strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			buf.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		buf.WriteRune(r)
		col++
	}
	return buf.String()
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth < 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
