// Package templates embeds the template corpus: the scaffold tree
// stamped out by 'plume new' and one bundle per generator.
//
// Corpus files are annotated text. A file may open with a frontmatter
// fence carrying a when: condition, wrap regions in {{#when}} guards,
// and embed __token__ placeholders in names and content. The payload
// itself (TypeScript, JSON, CSS) is opaque to plume.
package templates

import "embed"

// FS holds the full corpus. The all: prefix matters: template names
// begin with __token__ underscores, which embed skips by default.
//
//go:embed all:scaffold all:generators
var FS embed.FS

const (
	// ScaffoldRoot is the corpus root rendered by 'plume new'.
	ScaffoldRoot = "scaffold"

	// GeneratorsRoot holds one directory per generator: a
	// generator.yml manifest next to a templates tree.
	GeneratorsRoot = "generators"
)
