package materialize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/simonhull/firebird-suite/plume/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNodes() []template.RenderedNode {
	return []template.RenderedNode{
		{Path: "src", Dir: true},
		{Path: "src/index.ts", Content: []byte("export {}\n")},
		{Path: "package.json", Content: []byte("{}\n")},
	}
}

func TestPlanAndApplyFreshTree(t *testing.T) {
	root := t.TempDir()

	plan, err := NewPlan(root, testNodes(), false)
	require.NoError(t, err)

	created, skipped, overwritten := plan.Counts()
	assert.Equal(t, 2, created)
	assert.Zero(t, skipped)
	assert.Zero(t, overwritten)

	require.NoError(t, plan.Apply(context.Background(), 4))

	data, err := os.ReadFile(filepath.Join(root, "src", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "export {}\n", string(data))
}

func TestPlanIdenticalIsSkip(t *testing.T) {
	root := t.TempDir()

	plan, err := NewPlan(root, testNodes(), false)
	require.NoError(t, err)
	require.NoError(t, plan.Apply(context.Background(), 2))

	// Second run over the same tree: everything is identical.
	plan, err = NewPlan(root, testNodes(), false)
	require.NoError(t, err)

	created, skipped, overwritten := plan.Counts()
	assert.Zero(t, created)
	assert.Equal(t, 2, skipped)
	assert.Zero(t, overwritten)
}

func TestPlanCollectsAllConflicts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "index.ts"), []byte("edited\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("edited\n"), 0644))

	_, err := NewPlan(root, testNodes(), false)
	require.Error(t, err)

	var cerr *ConflictError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"src/index.ts", "package.json"}, cerr.Paths())

	// Both sides of each conflict are available for diffing.
	assert.Equal(t, []byte("edited\n"), cerr.Conflicts[0].Existing)
	assert.Equal(t, []byte("export {}\n"), cerr.Conflicts[0].Incoming)
}

func TestPlanForceOverwrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("edited\n"), 0644))

	plan, err := NewPlan(root, testNodes(), true)
	require.NoError(t, err)

	created, _, overwritten := plan.Counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, overwritten)

	require.NoError(t, plan.Apply(context.Background(), 2))

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestPlanDirectoryMismatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "package.json"), 0755))

	// Even force cannot turn a directory into a file.
	_, err := NewPlan(root, testNodes(), true)

	var cerr *ConflictError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.Conflicts, 1)
	assert.Contains(t, cerr.Conflicts[0].Detail, "directory is in the way")
}

func TestApplyHonorsCancellation(t *testing.T) {
	root := t.TempDir()

	plan, err := NewPlan(root, testNodes(), false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = plan.Apply(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyNothingToDo(t *testing.T) {
	root := t.TempDir()

	plan, err := NewPlan(root, nil, false)
	require.NoError(t, err)
	assert.NoError(t, plan.Apply(context.Background(), 2))
}
