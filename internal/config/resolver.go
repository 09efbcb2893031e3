package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Resolver merges option values from every source into a validated
// Context.
//
// Precedence, highest first: interactive answers, CLI flags, PLUME_*
// environment variables, table defaults. The command layer records flags
// only when the user actually set them, and collects answers only for
// options no flag covered, so the layering matches what the user saw.
type Resolver struct {
	v       *viper.Viper
	flags   map[string]string
	answers map[string]string
}

// NewResolver creates a resolver with environment overrides enabled.
// PLUME_HOST=heroku, PLUME_APISTYLE=graphql and friends slot in between
// flags and defaults.
func NewResolver() *Resolver {
	v := viper.New()
	v.SetEnvPrefix("PLUME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Resolver{
		v:       v,
		flags:   make(map[string]string),
		answers: make(map[string]string),
	}
}

// discardViper returns a viper with no sources attached, for resolvers
// that must not consult the environment.
func discardViper() *viper.Viper {
	return viper.New()
}

// SetFlag records an option value from a CLI flag the user set.
func (r *Resolver) SetFlag(name, value string) {
	r.flags[name] = value
}

// SetAnswer records an option value from an interactive answer.
func (r *Resolver) SetAnswer(name, value string) {
	r.answers[name] = value
}

// lookup resolves one option through the precedence chain. The second
// return reports whether the value was explicitly provided (answer,
// flag, or environment) as opposed to falling back to the default.
func (r *Resolver) lookup(opt Option) (string, bool) {
	if v, ok := r.answers[opt.Name]; ok {
		return v, true
	}
	if v, ok := r.flags[opt.Name]; ok {
		return v, true
	}
	if v := r.v.GetString(opt.Name); v != "" {
		return v, true
	}
	return opt.Default, false
}

// Resolve walks the option table, validates every value, and freezes the
// result into a Context. All violations are collected before returning,
// so one run surfaces every configuration problem at once. No file is
// read or written here.
func (r *Resolver) Resolve() (*Context, error) {
	values := make(map[string]string)
	var violations []Violation

	for name := range r.flags {
		if _, ok := Lookup(name); !ok {
			violations = append(violations, Violation{
				Option: name,
				Reason: "unknown option",
			})
		}
	}
	for name := range r.answers {
		if _, ok := Lookup(name); !ok {
			violations = append(violations, Violation{
				Option: name,
				Reason: "unknown option",
			})
		}
	}

	for _, opt := range table {
		value, explicit := r.lookup(opt)

		if opt.OnlyIf != nil && values[opt.OnlyIf.Option] != opt.OnlyIf.Equals {
			// The requirement does not hold. An explicit value is a
			// contradiction the user must resolve; a default is
			// silently omitted from the context.
			if explicit {
				violations = append(violations, Violation{
					Option: opt.Name,
					Value:  value,
					Reason: fmt.Sprintf("only valid when %s is %q (current: %q)",
						opt.OnlyIf.Option, opt.OnlyIf.Equals, values[opt.OnlyIf.Option]),
				})
			}
			continue
		}

		if value == "" {
			if opt.Required {
				violations = append(violations, Violation{
					Option: opt.Name,
					Reason: "required but not provided",
				})
			}
			continue
		}

		if !opt.Allows(value) {
			violations = append(violations, Violation{
				Option:  opt.Name,
				Value:   value,
				Allowed: opt.Values,
			})
			continue
		}

		values[opt.Name] = value
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return newContext(values), nil
}
