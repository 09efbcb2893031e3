// Package template loads template trees and renders them against a
// configuration context.
//
// A template tree is any fs.FS subtree: the embedded scaffold corpus, an
// embedded generator bundle, or a directory override on disk. Rendering
// happens in two phases. The dry pass parses every directive, resolves
// every placeholder, and checks every output path without writing
// anything, collecting all problems so one run reports them together.
// Only a clean dry pass produces RenderedNodes for the materializer.
//
// Template files carry three kinds of markup:
//
//   - a frontmatter block ("---" fenced, at the top of the file) whose
//     when: expression includes or excludes the whole file
//   - region guards ({{#when expr}} ... {{/when}} on their own lines)
//     that include or exclude spans inside a file
//   - __token__ placeholders in file content and path segments
package template

// Node is one entry of a loaded template tree, immutable after load.
type Node struct {
	// Path is the slash-separated path relative to the tree root. It
	// may contain __token__ segments that substitution resolves.
	Path string

	// Dir marks directory entries. Directory nodes carry no content
	// and no condition; they exist so empty directories survive
	// rendering.
	Dir bool

	// Content is the file body with the frontmatter block removed.
	// Nil for directories.
	Content []byte

	// When is the raw frontmatter condition, "" when unconditional.
	When string

	// whenLine is the 1-based line the when: expression came from,
	// for error reporting.
	whenLine int

	// lineOffset is the number of lines the frontmatter block consumed,
	// so guard errors report positions in the original file.
	lineOffset int
}

// RenderedNode is a fully resolved output entry: conditions applied,
// guards stripped, every token substituted in both path and content.
type RenderedNode struct {
	Path    string
	Dir     bool
	Content []byte
}
