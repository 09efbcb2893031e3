// Package config resolves, validates, and persists a project's
// configuration context.
//
// Every configurable choice Plume offers is declared once in the option
// table. The resolver merges defaults, environment variables, CLI flags,
// and interactive answers into an immutable Context, validating every
// value against the table before anything touches disk. The same table
// backs template-directive validation, so a template can never reference
// an option or value the resolver would not accept.
package config

import "sort"

// Requirement gates an option on another option's resolved value.
// An option with a Requirement is only meaningful while the requirement
// holds; see Resolver for how unsatisfied requirements are handled.
type Requirement struct {
	Option string
	Equals string
}

// Option describes one entry in the option table.
//
// Enumerated options carry their full value domain in Values. Scalar
// options (application name, package scope) leave Values nil and accept
// any value, subject to Required.
type Option struct {
	Name     string
	Values   []string
	Default  string
	Required bool
	OnlyIf   *Requirement
	Prompt   string
}

// Enumerated reports whether the option has a closed value domain.
func (o Option) Enumerated() bool {
	return len(o.Values) > 0
}

// Allows reports whether value is inside the option's domain.
// Scalar options allow any non-empty value.
func (o Option) Allows(value string) bool {
	if !o.Enumerated() {
		return value != ""
	}
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}

// table is the canonical option table. Order matters: options are
// resolved and prompted in declaration order, and an option's OnlyIf may
// only reference options declared before it.
var table = []Option{
	{
		Name:     "appName",
		Required: true,
		Prompt:   "Application name",
	},
	{
		Name:   "packageScope",
		Prompt: "Package scope (e.g. @acme, empty for none)",
	},
	{
		Name:    "host",
		Values:  []string{"vercel", "heroku"},
		Default: "vercel",
		Prompt:  "Deployment host",
	},
	{
		Name:    "apiStyle",
		Values:  []string{"trpc", "graphql"},
		Default: "trpc",
		Prompt:  "API style",
	},
	{
		Name:    "database",
		Values:  []string{"postgres"},
		Default: "postgres",
		Prompt:  "Database",
	},
	{
		Name:    "edgeRuntime",
		Values:  []string{"node", "edge"},
		Default: "node",
		OnlyIf:  &Requirement{Option: "host", Equals: "vercel"},
		Prompt:  "Function runtime",
	},
}

// Table returns the option table in declaration order.
func Table() []Option {
	out := make([]Option, len(table))
	copy(out, table)
	return out
}

// Lookup finds an option by name.
func Lookup(name string) (Option, bool) {
	for _, opt := range table {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// Context is an immutable, validated set of resolved option values.
//
// A Context is only ever produced by Resolver.Resolve or Load, so holding
// one is proof the values passed table validation. Options omitted by an
// unsatisfied requirement are absent: Has reports false and Value returns
// the empty string, which is how template conditions observe them.
type Context struct {
	values map[string]string
}

// newContext copies values so later mutation of the source map cannot
// leak into the Context.
func newContext(values map[string]string) *Context {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Context{values: copied}
}

// Value returns the resolved value for an option, or "" when the option
// is absent from the context.
func (c *Context) Value(name string) string {
	return c.values[name]
}

// Has reports whether the option is present in the context.
func (c *Context) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Names returns the names of all present options in sorted order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
