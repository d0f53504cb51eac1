package schema

import (
	"testing"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basekick-labs/slate/internal/filter"
)

func paths(dotted ...string) []ColumnPath {
	out := make([]ColumnPath, 0, len(dotted))
	for _, d := range dotted {
		out = append(out, FromDotted(d))
	}
	return out
}

func dottedLeaves(sc *pqschema.Schema) []string {
	var out []string
	for _, l := range Leaves(sc) {
		out = append(out, l.Dotted())
	}
	return out
}

func TestProjectAbsentInput(t *testing.T) {
	sc, err := Project(nil)
	require.NoError(t, err)
	assert.Nil(t, sc)

	sc, err = Project([]ColumnPath{})
	require.NoError(t, err)
	assert.Nil(t, sc)
}

func TestProjectSingleLeaf(t *testing.T) {
	sc, err := Project(paths("a"))
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.Equal(t, RootName, sc.Root().Name())
	assert.Equal(t, []string{"a"}, dottedLeaves(sc))
}

func TestProjectOneLeafPerPath(t *testing.T) {
	in := paths("a.b", "a.c", "d", "e.f.g")
	sc, err := Project(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.b", "a.c", "d", "e.f.g"}, dottedLeaves(sc))
}

func TestProjectSharedPrefixCollapses(t *testing.T) {
	sc, err := Project(paths("a.b", "a.c"))
	require.NoError(t, err)

	root := sc.Root()
	require.Equal(t, 1, root.NumFields(), "exactly one node named a")

	group, ok := root.Field(0).(*pqschema.GroupNode)
	require.True(t, ok)
	assert.Equal(t, "a", group.Name())
	require.Equal(t, 2, group.NumFields())
	assert.Equal(t, "b", group.Field(0).Name())
	assert.Equal(t, "c", group.Field(1).Name())
}

func TestProjectSiblingOrderFirstSeen(t *testing.T) {
	sc, err := Project(paths("z.late", "a.early", "z.other"))
	require.NoError(t, err)

	root := sc.Root()
	require.Equal(t, 2, root.NumFields())
	assert.Equal(t, "z", root.Field(0).Name())
	assert.Equal(t, "a", root.Field(1).Name())
	assert.Equal(t, []string{"z.late", "a.early", "z.other"}, dottedLeaves(sc))
}

func TestProjectDeterministic(t *testing.T) {
	in := paths("a.b.c", "a.b.d", "x", "a.y")

	first, err := Project(in)
	require.NoError(t, err)
	second, err := Project(in)
	require.NoError(t, err)

	assert.True(t, first.Root().Equals(second.Root()))
	assert.Equal(t, dottedLeaves(first), dottedLeaves(second))
}

func TestProjectDuplicatePathsCollapse(t *testing.T) {
	sc, err := Project(paths("a.b", "a.b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b"}, dottedLeaves(sc))
}

func TestProjectConflictLeafThenGroup(t *testing.T) {
	_, err := Project(paths("a", "a.b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaConflict)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestProjectConflictGroupThenLeaf(t *testing.T) {
	_, err := Project(paths("a.b", "a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaConflict)
}

func TestProjectEmptyPathRejected(t *testing.T) {
	_, err := Project([]ColumnPath{{}})
	require.Error(t, err)
}

func TestProjectFilterNil(t *testing.T) {
	sc, err := ProjectFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, sc)
}

func TestProjectFilterCollectsColumns(t *testing.T) {
	f := filter.And(
		filter.Gt("cpu.usage", 0.9),
		filter.Or(filter.Eq("host", "web-1"), filter.Lt("cpu.idle", 0.1)),
	)
	sc, err := ProjectFilter(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu.usage", "cpu.idle", "host"}, dottedLeaves(sc))
}
