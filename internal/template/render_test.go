package template

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderTree(t *testing.T, fsys fstest.MapFS, r *Renderer) ([]RenderedNode, error) {
	t.Helper()

	nodes, err := Load(fsys, "tree")
	require.NoError(t, err)
	return r.Render(nodes)
}

func renderedPaths(nodes []RenderedNode) []string {
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, n.Path)
	}
	return paths
}

func TestRenderFileConditions(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/vercel.json": {Data: []byte("---\nwhen: host == vercel\n---\n{}\n")},
		"tree/Procfile":    {Data: []byte("---\nwhen: host == heroku\n---\nweb: node server.js\n")},
		"tree/index.ts":    {Data: []byte("export {}\n")},
	}

	vercel, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"index.ts", "vercel.json"}, renderedPaths(vercel))

	heroku, err := renderTree(t, fsys, NewRenderer(herokuContext(t)))
	require.NoError(t, err)
	assert.Equal(t, []string{"Procfile", "index.ts"}, renderedPaths(heroku))
}

func TestRenderRegionGuards(t *testing.T) {
	content := "deps:\n" +
		"{{#when apiStyle == trpc}}\n" +
		"  - trpc\n" +
		"{{/when}}\n" +
		"{{#when apiStyle == graphql}}\n" +
		"  - graphql\n" +
		"{{/when}}\n" +
		"  - react\n"
	fsys := fstest.MapFS{
		"tree/deps.yml": {Data: []byte(content)},
	}

	nodes, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "deps:\n  - trpc\n  - react\n", string(nodes[0].Content))

	nodes, err = renderTree(t, fsys, NewRenderer(herokuContext(t)))
	require.NoError(t, err)
	assert.Equal(t, "deps:\n  - graphql\n  - react\n", string(nodes[0].Content))
}

func TestRenderNestedGuards(t *testing.T) {
	content := "start\n" +
		"{{#when host == vercel}}\n" +
		"vercel\n" +
		"{{#when edgeRuntime == edge}}\n" +
		"edge\n" +
		"{{/when}}\n" +
		"{{/when}}\n" +
		"end\n"
	fsys := fstest.MapFS{
		"tree/file.txt": {Data: []byte(content)},
	}

	// vercel context has edgeRuntime=node: outer true, inner false.
	nodes, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)
	assert.Equal(t, "start\nvercel\nend\n", string(nodes[0].Content))

	// heroku context: outer false drops everything, inner included.
	nodes, err = renderTree(t, fsys, NewRenderer(herokuContext(t)))
	require.NoError(t, err)
	assert.Equal(t, "start\nend\n", string(nodes[0].Content))
}

func TestRenderSubjectTokens(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/__subject-name__.router.ts": {
			Data: []byte("export const __subjectName__Router = router('__subject-names__')\n"),
		},
	}

	r := NewRenderer(vercelContext(t))
	r.BindSubject("organization")

	nodes, err := renderTree(t, fsys, r)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, "organization.router.ts", nodes[0].Path)
	assert.Equal(t, "export const organizationRouter = router('organizations')\n", string(nodes[0].Content))
}

func TestRenderUnboundSubjectToken(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/file.ts": {Data: []byte("export class __SubjectName__ {}\n")},
	}

	_, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.Error(t, err)

	var perr *PlaceholderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "SubjectName", perr.Token)
}

func TestRenderAbsentOptionToken(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/runtime.txt": {Data: []byte("runtime: __edgeRuntime__\n")},
	}

	// vercel context carries edgeRuntime.
	nodes, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)
	assert.Equal(t, "runtime: node\n", string(nodes[0].Content))

	// heroku context omits it; the unguarded token is an error.
	_, err = renderTree(t, fsys, NewRenderer(herokuContext(t)))
	var perr *PlaceholderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "edgeRuntime", perr.Token)
}

func TestRenderDuplicateTarget(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/__subject-name__.ts": {Data: []byte("a\n")},
		"tree/organization.ts":     {Data: []byte("b\n")},
	}

	r := NewRenderer(vercelContext(t))
	r.BindSubject("organization")

	_, err := renderTree(t, fsys, r)
	require.Error(t, err)

	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Error(), "already produced by")
}

func TestRenderValidatesGuardsInDroppedFiles(t *testing.T) {
	content := "---\nwhen: host == heroku\n---\n" +
		"{{#when region == eu}}\n" +
		"x\n" +
		"{{/when}}\n"
	fsys := fstest.MapFS{
		"tree/file.txt": {Data: []byte(content)},
	}

	// host is vercel, so the file is dropped, but the broken guard
	// must still be reported.
	_, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.Error(t, err)

	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Error(), "unknown option")
}

func TestRenderSkipsTokensInDroppedRegions(t *testing.T) {
	content := "{{#when host == vercel}}\n" +
		"runtime: __edgeRuntime__\n" +
		"{{/when}}\n" +
		"name: __appName__\n"
	fsys := fstest.MapFS{
		"tree/conf.yml": {Data: []byte(content)},
	}

	// On heroku the guarded region is stripped before substitution,
	// so the absent edgeRuntime token is not an error.
	nodes, err := renderTree(t, fsys, NewRenderer(herokuContext(t)))
	require.NoError(t, err)
	assert.Equal(t, "name: myapp\n", string(nodes[0].Content))
}

func TestRenderPrunesEmptyDirs(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/api/trpc/router.ts": {Data: []byte("---\nwhen: apiStyle == trpc\n---\nr\n")},
		"tree/src/index.ts":       {Data: []byte("i\n")},
	}

	nodes, err := renderTree(t, fsys, NewRenderer(herokuContext(t)))
	require.NoError(t, err)

	// heroku context uses graphql: the trpc file and both its parent
	// directories disappear.
	assert.Equal(t, []string{"src", "src/index.ts"}, renderedPaths(nodes))
}

func TestRenderCollectsAllProblems(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/a.txt": {Data: []byte("---\nwhen: region == eu\n---\nx\n")},
		"tree/b.txt": {Data: []byte("__bogus__\n")},
		"tree/c.txt": {Data: []byte("{{#when host == aws}}\nx\n{{/when}}\n")},
	}

	_, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.Error(t, err)

	var probs *Problems
	require.True(t, errors.As(err, &probs))
	assert.Len(t, probs.Items, 3)
}

func TestRenderDeterministic(t *testing.T) {
	fsys := fstest.MapFS{
		"tree/a.txt": {Data: []byte("name: __appName__\n")},
		"tree/b.txt": {Data: []byte("{{#when apiStyle == trpc}}\ntrpc\n{{/when}}\nend\n")},
	}

	first, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)
	second, err := renderTree(t, fsys, NewRenderer(vercelContext(t)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
