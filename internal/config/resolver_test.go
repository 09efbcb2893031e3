package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r := NewResolver()
	r.SetFlag("appName", "myapp")

	ctx, err := r.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "myapp", ctx.Value("appName"))
	assert.Equal(t, "vercel", ctx.Value("host"))
	assert.Equal(t, "trpc", ctx.Value("apiStyle"))
	assert.Equal(t, "postgres", ctx.Value("database"))

	// edgeRuntime's requirement (host == vercel) holds, so its default
	// applies.
	assert.Equal(t, "node", ctx.Value("edgeRuntime"))

	// packageScope defaults to empty and is omitted.
	assert.False(t, ctx.Has("packageScope"))
}

func TestResolvePrecedence(t *testing.T) {
	r := NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("apiStyle", "trpc")
	r.SetAnswer("apiStyle", "graphql")

	ctx, err := r.Resolve()
	require.NoError(t, err)

	// Answers win over flags.
	assert.Equal(t, "graphql", ctx.Value("apiStyle"))
}

func TestResolveEnvOverride(t *testing.T) {
	t.Setenv("PLUME_HOST", "heroku")

	r := NewResolver()
	r.SetFlag("appName", "myapp")

	ctx, err := r.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "heroku", ctx.Value("host"))

	// With host forced to heroku, the defaulted edgeRuntime is omitted.
	assert.False(t, ctx.Has("edgeRuntime"))
}

func TestResolveCollectsAllViolations(t *testing.T) {
	r := NewResolver()
	r.SetFlag("host", "aws")
	r.SetFlag("apiStyle", "rest")

	_, err := r.Resolve()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	// host invalid, apiStyle invalid, appName missing: all reported in
	// one pass.
	assert.Len(t, verr.Violations, 3)
}

func TestResolveDomainViolation(t *testing.T) {
	r := NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("host", "digitalocean")

	_, err := r.Resolve()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "host", verr.Violations[0].Option)
	assert.Equal(t, "digitalocean", verr.Violations[0].Value)
	assert.Equal(t, []string{"vercel", "heroku"}, verr.Violations[0].Allowed)
}

func TestResolveDependentOption(t *testing.T) {
	tests := []struct {
		name        string
		host        string
		edgeRuntime string
		wantErr     bool
		wantPresent bool
	}{
		{
			name:        "explicit while valid",
			host:        "vercel",
			edgeRuntime: "edge",
			wantPresent: true,
		},
		{
			name:        "defaulted while valid",
			host:        "vercel",
			wantPresent: true,
		},
		{
			name: "defaulted while invalid is omitted",
			host: "heroku",
		},
		{
			name:        "explicit while invalid is an error",
			host:        "heroku",
			edgeRuntime: "edge",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			r.SetFlag("appName", "myapp")
			r.SetFlag("host", tt.host)
			if tt.edgeRuntime != "" {
				r.SetFlag("edgeRuntime", tt.edgeRuntime)
			}

			ctx, err := r.Resolve()
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				require.Len(t, verr.Violations, 1)
				assert.Equal(t, "edgeRuntime", verr.Violations[0].Option)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPresent, ctx.Has("edgeRuntime"))
		})
	}
}

func TestResolveUnknownOption(t *testing.T) {
	r := NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("region", "eu-west-1")

	_, err := r.Resolve()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "region", verr.Violations[0].Option)
}

func TestContextImmutable(t *testing.T) {
	values := map[string]string{"host": "vercel"}
	ctx := newContext(values)

	values["host"] = "heroku"

	assert.Equal(t, "vercel", ctx.Value("host"))
}
