package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, r.Contains("src/index.ts", Hash("x")))
}

func TestAddSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	r, err := Load(dir)
	require.NoError(t, err)
	h := Hash(`.merge("post.", postRouter)`)
	r.Add("src/server/routers/index.ts", h)
	require.NoError(t, r.Save())

	again, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, again.Contains("src/server/routers/index.ts", h))
	assert.False(t, again.Contains("src/server/routers/index.ts", Hash("other")))
	assert.False(t, again.Contains("other.ts", h))
}

func TestAddDeduplicates(t *testing.T) {
	dir := t.TempDir()
	r, err := Load(dir)
	require.NoError(t, err)

	h := Hash("fragment")
	r.Add("a.ts", h)
	r.Add("a.ts", h)
	require.NoError(t, r.Save())

	data, err := os.ReadFile(filepath.Join(dir, Dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), h))
}

func TestSaveIsDeterministic(t *testing.T) {
	write := func() []byte {
		dir := t.TempDir()
		r, err := Load(dir)
		require.NoError(t, err)
		r.Add("b.ts", Hash("two"))
		r.Add("a.ts", Hash("one"))
		require.NoError(t, r.Save())
		data, err := os.ReadFile(filepath.Join(dir, Dir, FileName))
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, write(), write())
}

func TestLoadCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Dir, FileName), []byte("files: [not: a: map"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete it to reset")
}

func TestHashStable(t *testing.T) {
	assert.Equal(t, Hash("fragment"), Hash("fragment"))
	assert.NotEqual(t, Hash("fragment"), Hash("fragment "))
	assert.Len(t, Hash(""), 64)
}
