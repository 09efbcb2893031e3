package naming

import (
	"reflect"
	"testing"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		singular string
		plural   string
	}{
		// Regular plurals (add s)
		{"cat", "cats"},
		{"user", "users"},
		{"organization", "organizations"},
		{"component", "components"},
		{"cell", "cells"},

		// Words ending in s, x, z, ch, sh (add es)
		{"class", "classes"},
		{"box", "boxes"},
		{"church", "churches"},
		{"dish", "dishes"},
		{"bus", "buses"},

		// Consonant + y (change to ies)
		{"city", "cities"},
		{"category", "categories"},
		{"factory", "factories"},

		// Vowel + y (just add s)
		{"key", "keys"},
		{"day", "days"},

		// Consonant + o (add es), with exceptions
		{"hero", "heroes"},
		{"photo", "photos"},
		{"piano", "pianos"},

		// f / fe (change to ves)
		{"leaf", "leaves"},
		{"knife", "knives"},
		{"wolf", "wolves"},

		// Irregulars
		{"person", "people"},
		{"child", "children"},
		{"mouse", "mice"},

		// Case preservation
		{"User", "Users"},
		{"Person", "People"},
		{"CHILD", "CHILDREN"},

		// Edge cases
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.singular, func(t *testing.T) {
			result := Pluralize(tt.singular)
			if result != tt.plural {
				t.Errorf("Pluralize(%q) = %q; want %q", tt.singular, result, tt.plural)
			}
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		plural   string
		singular string
	}{
		{"cats", "cat"},
		{"users", "user"},
		{"organizations", "organization"},
		{"pages", "page"},
		{"cells", "cell"},

		{"classes", "class"},
		{"boxes", "box"},
		{"churches", "church"},
		{"dishes", "dish"},

		{"cities", "city"},
		{"categories", "category"},
		{"factories", "factory"},

		{"heroes", "hero"},
		{"leaves", "leaf"},
		{"knives", "knife"},

		{"people", "person"},
		{"children", "child"},
		{"mice", "mouse"},

		// Already singular
		{"address", "address"},
		{"status", "status"},
		{"organization", "organization"},

		// Case preservation
		{"Users", "User"},
		{"People", "Person"},

		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.plural, func(t *testing.T) {
			result := Singularize(tt.plural)
			if result != tt.singular {
				t.Errorf("Singularize(%q) = %q; want %q", tt.plural, result, tt.singular)
			}
		})
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		input string
		words []string
	}{
		{"organization", []string{"organization"}},
		{"blog-post", []string{"blog", "post"}},
		{"blog_post", []string{"blog", "post"}},
		{"blogPost", []string{"blog", "post"}},
		{"BlogPost", []string{"blog", "post"}},
		{"HTTPServer", []string{"http", "server"}},
		{"user profile", []string{"user", "profile"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Words(tt.input)
			if !reflect.DeepEqual(result, tt.words) {
				t.Errorf("Words(%q) = %v; want %v", tt.input, result, tt.words)
			}
		})
	}
}

func TestCaseTransforms(t *testing.T) {
	tests := []struct {
		input  string
		pascal string
		camel  string
		kebab  string
	}{
		{"organization", "Organization", "organization", "organization"},
		{"blog-post", "BlogPost", "blogPost", "blog-post"},
		{"BlogPost", "BlogPost", "blogPost", "blog-post"},
		{"blogPost", "BlogPost", "blogPost", "blog-post"},
		{"user_profile", "UserProfile", "userProfile", "user-profile"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Pascal(tt.input); got != tt.pascal {
				t.Errorf("Pascal(%q) = %q; want %q", tt.input, got, tt.pascal)
			}
			if got := Camel(tt.input); got != tt.camel {
				t.Errorf("Camel(%q) = %q; want %q", tt.input, got, tt.camel)
			}
			if got := Kebab(tt.input); got != tt.kebab {
				t.Errorf("Kebab(%q) = %q; want %q", tt.input, got, tt.kebab)
			}
		})
	}
}
