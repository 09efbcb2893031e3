package template

import (
	"testing"

	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vercelContext(t *testing.T) *config.Context {
	t.Helper()

	r := config.NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("host", "vercel")
	r.SetFlag("apiStyle", "trpc")

	ctx, err := r.Resolve()
	require.NoError(t, err)
	return ctx
}

func herokuContext(t *testing.T) *config.Context {
	t.Helper()

	r := config.NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("host", "heroku")
	r.SetFlag("apiStyle", "graphql")

	ctx, err := r.Resolve()
	require.NoError(t, err)
	return ctx
}

func TestConditionEval(t *testing.T) {
	vercel := vercelContext(t)
	heroku := herokuContext(t)

	tests := []struct {
		expr       string
		wantVercel bool
		wantHeroku bool
	}{
		{"host == vercel", true, false},
		{"host != vercel", false, true},
		{"host == heroku", false, true},
		{"host in (vercel, heroku)", true, true},
		{"apiStyle in (graphql)", false, true},
		{"host == vercel && apiStyle == trpc", true, false},
		{"host == heroku || apiStyle == trpc", true, true},
		{"(host == vercel || host == heroku) && apiStyle == graphql", false, true},

		// edgeRuntime is only present on vercel; absent compares as
		// empty.
		{"edgeRuntime == node", true, false},
		{"edgeRuntime != node", false, true},
		{"edgeRuntime in (node, edge)", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			require.Empty(t, cond.Problems())

			assert.Equal(t, tt.wantVercel, cond.Eval(vercel), "vercel context")
			assert.Equal(t, tt.wantHeroku, cond.Eval(heroku), "heroku context")
		})
	}
}

func TestConditionParseErrors(t *testing.T) {
	tests := []string{
		"",
		"host ==",
		"host = vercel",
		"host == vercel &&",
		"host in vercel",
		"host in ()",
		"host in (vercel,",
		"(host == vercel",
		"host == vercel) ",
		"== vercel",
		"host & apiStyle",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseCondition(expr)
			assert.Error(t, err)
		})
	}
}

func TestConditionProblems(t *testing.T) {
	tests := []struct {
		expr     string
		problems int
	}{
		{"host == vercel", 0},
		// Unknown option.
		{"region == eu", 1},
		// Value outside the domain.
		{"host == aws", 1},
		// Two bad values in one list.
		{"host in (vercel, aws, gcp)", 2},
		// Scalar options cannot be tested.
		{"appName == myapp", 1},
		// Both sides broken.
		{"region == eu && host == aws", 2},
		// One side broken.
		{"host == vercel || database == mysql", 1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			assert.Len(t, cond.Problems(), tt.problems)
		})
	}
}
