// Package naming derives identifier variants from a subject word or phrase.
//
// Generators accept a subject in any common spelling (organization,
// blog-post, blogPost, BlogPost) and need every case and number variant of
// it: PascalCase, camelCase, kebab-case, each in singular and plural form.
// All transforms here are pure functions over a declared rule table, so the
// same subject always yields the same variants.
package naming

import (
	"strings"
	"unicode"
)

// irregularPlurals maps singular nouns whose plural does not follow the
// suffix rules. Lookups are lowercase; preserveCase restores the caller's
// capitalization.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"tooth":  "teeth",
	"foot":   "feet",
	"mouse":  "mice",
	"goose":  "geese",
	"knife":  "knives",
	"wife":   "wives",
	"life":   "lives",
}

// irregularSingulars is the inverse of irregularPlurals.
var irregularSingulars = func() map[string]string {
	m := make(map[string]string, len(irregularPlurals))
	for singular, plural := range irregularPlurals {
		m[plural] = singular
	}
	return m
}()

// suffixRule rewrites a trailing match to a replacement. Rules are tried in
// declaration order; the first match wins.
type suffixRule struct {
	suffix  string
	replace string
}

var pluralSuffixes = []suffixRule{
	{"ch", "ches"},
	{"sh", "shes"},
	{"x", "xes"},
	{"z", "zes"},
	{"s", "ses"},
	{"fe", "ves"},
	{"f", "ves"},
}

var singularSuffixes = []suffixRule{
	{"ches", "ch"},
	{"shes", "sh"},
	{"xes", "x"},
	{"zes", "z"},
	{"sses", "ss"},
	{"ies", "y"},
	{"oes", "o"},
	{"ves", "f"},
}

// Pluralize converts a singular noun to its plural form.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	if plural, ok := irregularPlurals[lower]; ok {
		return preserveCase(word, plural)
	}

	for _, r := range pluralSuffixes {
		if strings.HasSuffix(lower, r.suffix) {
			return word[:len(word)-len(r.suffix)] + r.replace
		}
	}

	// Consonant + y: change y to ies.
	if strings.HasSuffix(lower, "y") && len(word) > 1 && !isVowel(lower[len(lower)-2]) {
		return word[:len(word)-1] + "ies"
	}

	// Consonant + o: add "es", with a short exception list.
	if strings.HasSuffix(lower, "o") && len(word) > 1 && !isVowel(lower[len(lower)-2]) {
		for _, exc := range []string{"photo", "piano", "halo"} {
			if strings.HasSuffix(lower, exc) {
				return word + "s"
			}
		}
		return word + "es"
	}

	return word + "s"
}

// Singularize converts a plural noun back to its singular form. Words that
// are already singular pass through unchanged.
func Singularize(word string) string {
	if word == "" {
		return ""
	}

	lower := strings.ToLower(word)

	if singular, ok := irregularSingulars[lower]; ok {
		return preserveCase(word, singular)
	}

	for _, r := range singularSuffixes {
		if strings.HasSuffix(lower, r.suffix) {
			return word[:len(word)-len(r.suffix)] + r.replace
		}
	}

	// Plain trailing s, but not a double s (address, class) and not a
	// Latin -us singular (status, campus).
	if strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && !strings.HasSuffix(lower, "us") {
		return word[:len(word)-1]
	}

	return word
}

// Words splits an identifier in any spelling into its lowercase word parts.
// Separators (-, _, space) and camel humps both mark boundaries.
//
// Examples: "blog-post" → [blog post], "BlogPost" → [blog post],
// "blogPost" → [blog post].
func Words(s string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-' || r == '_' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			// Boundary before an upper rune that follows a lower rune or
			// digit, or that starts the tail of an acronym (HTTPServer).
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					flush()
				} else if i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsLower(runes[i+1]) {
					flush()
				}
			}
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return words
}

// Pascal converts a subject to PascalCase: "blog-post" → "BlogPost".
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// Camel converts a subject to camelCase: "blog-post" → "blogPost".
func Camel(s string) string {
	var b strings.Builder
	for i, w := range Words(s) {
		if i == 0 {
			b.WriteString(w)
		} else {
			b.WriteString(capitalize(w))
		}
	}
	return b.String()
}

// Kebab converts a subject to kebab-case: "BlogPost" → "blog-post".
func Kebab(s string) string {
	return strings.Join(Words(s), "-")
}

// capitalize uppercases the first letter of a lowercase word.
func capitalize(w string) string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// preserveCase applies the case pattern from original to the replacement.
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}

	if unicode.IsUpper(rune(original[0])) {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}

	return replacement
}

// isVowel checks if a byte represents a vowel.
func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
