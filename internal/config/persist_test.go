package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveTestContext(t *testing.T) *Context {
	t.Helper()

	r := NewResolver()
	r.SetFlag("appName", "myapp")
	r.SetFlag("packageScope", "@acme")
	r.SetFlag("host", "vercel")
	r.SetFlag("apiStyle", "graphql")
	r.SetFlag("edgeRuntime", "edge")

	ctx, err := r.Resolve()
	require.NoError(t, err)
	return ctx
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := resolveTestContext(t)

	require.NoError(t, Save(ctx, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "myapp", loaded.Value("appName"))
	assert.Equal(t, "@acme", loaded.Value("packageScope"))
	assert.Equal(t, "vercel", loaded.Value("host"))
	assert.Equal(t, "graphql", loaded.Value("apiStyle"))
	assert.Equal(t, "postgres", loaded.Value("database"))
	assert.Equal(t, "edge", loaded.Value("edgeRuntime"))
}

func TestSaveIsDeterministic(t *testing.T) {
	ctx := resolveTestContext(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, Save(ctx, dirA))
	require.NoError(t, Save(ctx, dirB))

	a, err := os.ReadFile(filepath.Join(dirA, FileName))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dirB, FileName))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())

	var merr *MissingConfigError
	require.True(t, errors.As(err, &merr))
}

func TestLoadUnparsable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("application: [not: valid"), 0644))

	_, err := Load(dir)

	var merr *MissingConfigError
	require.True(t, errors.As(err, &merr))
}

func TestLoadRevalidates(t *testing.T) {
	dir := t.TempDir()
	edited := "application:\n  name: myapp\noptions:\n  host: aws\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(edited), 0644))

	_, err := Load(dir)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "host", verr.Violations[0].Option)
}

func TestLoadIgnoresEnvironment(t *testing.T) {
	dir := t.TempDir()
	ctx := resolveTestContext(t)
	require.NoError(t, Save(ctx, dir))

	// A different environment at load time must not change the
	// persisted configuration.
	t.Setenv("PLUME_HOST", "heroku")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "vercel", loaded.Value("host"))
}
