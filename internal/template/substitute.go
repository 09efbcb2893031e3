package template

import (
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/naming"
)

// tokenPattern matches __token__ placeholders in content and paths.
// Token names start with a letter and may contain letters, digits, and
// dashes. Underscore is deliberately excluded from names so payload
// identifiers like __NEXT_DATA__ never match.
var tokenPattern = regexp.MustCompile(`__([A-Za-z][A-Za-z0-9-]*)__`)

// Vars maps token names to their replacement values for one render.
type Vars map[string]string

// merged returns a new Vars with all entries of both maps; the receiver
// wins on collisions.
func (v Vars) merged(other Vars) Vars {
	out := make(Vars, len(v)+len(other))
	for k, val := range other {
		out[k] = val
	}
	for k, val := range v {
		out[k] = val
	}
	return out
}

// ContextVars exposes every resolved option as a token: __appName__,
// __host__, __apiStyle__ and so on. Options absent from the context
// (omitted dependent options) get no token, so templates must guard
// their use.
//
// One derived token is added: __packageName__ is the scoped package
// name (@scope/app) when a package scope was chosen, the bare app name
// otherwise. Conditions cannot test scalar options, so the corpus
// could not otherwise vary on scope presence.
func ContextVars(ctx *config.Context) Vars {
	vars := make(Vars)
	for _, name := range ctx.Names() {
		vars[name] = ctx.Value(name)
	}

	pkg := ctx.Value("appName")
	if scope := ctx.Value("packageScope"); scope != "" {
		pkg = scope + "/" + pkg
	}
	vars["packageName"] = pkg

	return vars
}

// SubjectVars derives the six subject tokens from a raw subject. The
// token spells the transform it applies:
//
//	__SubjectName__    organization  → Organization
//	__subjectName__    organization  → organization
//	__subject-name__   BlogPost      → blog-post
//	__SubjectNames__   organization  → Organizations
//	__subjectNames__   blog-post     → blogPosts
//	__subject-names__  blog-post     → blog-posts
//
// The subject may arrive in any spelling and number; it is normalized
// to singular before the variants are derived.
func SubjectVars(raw string) Vars {
	words := naming.Words(raw)
	if len(words) == 0 {
		return Vars{}
	}

	last := len(words) - 1
	words[last] = naming.Singularize(words[last])
	singular := strings.Join(words, "-")

	words[last] = naming.Pluralize(words[last])
	plural := strings.Join(words, "-")

	return Vars{
		"SubjectName":   naming.Pascal(singular),
		"subjectName":   naming.Camel(singular),
		"subject-name":  naming.Kebab(singular),
		"SubjectNames":  naming.Pascal(plural),
		"subjectNames":  naming.Camel(plural),
		"subject-names": naming.Kebab(plural),
	}
}

// substituteContent replaces every token in a file body. Tokens with no
// binding are left in place and reported, one error per occurrence,
// with their line numbers.
func substituteContent(path string, content []byte, vars Vars) ([]byte, []error) {
	var errs []error

	text := string(content)
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		name := text[m[2]:m[3]]

		b.WriteString(text[last:start])
		if value, ok := vars[name]; ok {
			b.WriteString(value)
		} else {
			errs = append(errs, &PlaceholderError{
				Path:  path,
				Line:  1 + strings.Count(text[:start], "\n"),
				Token: name,
			})
			b.WriteString(text[start:end])
		}
		last = end
	}
	b.WriteString(text[last:])

	return []byte(b.String()), errs
}

// substitutePath replaces every token in a relative path.
func substitutePath(path string, vars Vars) (string, []error) {
	var errs []error

	result := tokenPattern.ReplaceAllStringFunc(path, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := vars[name]; ok {
			return value
		}
		errs = append(errs, &PlaceholderError{Path: path, Token: name})
		return match
	})

	return result, errs
}
