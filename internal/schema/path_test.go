package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDotted(t *testing.T) {
	assert.Equal(t, ColumnPath{"a", "b", "c"}, FromDotted("a.b.c"))
	assert.Equal(t, ColumnPath{"a"}, FromDotted("a"))
	assert.Nil(t, FromDotted(""))
}

func TestDottedRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "a.b", "metrics.cpu.usage"} {
		assert.Equal(t, s, FromDotted(s).Dotted())
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, ColumnPath{"a", "b"}.Equal(ColumnPath{"a", "b"}))
	assert.False(t, ColumnPath{"a", "b"}.Equal(ColumnPath{"a"}))
	assert.False(t, ColumnPath{"a", "b"}.Equal(ColumnPath{"a", "c"}))
}

func TestParentAndLeaf(t *testing.T) {
	p := FromDotted("a.b.c")
	assert.Equal(t, ColumnPath{"a", "b"}, p.Parent())
	assert.Equal(t, "c", p.Leaf())

	single := FromDotted("a")
	assert.Nil(t, single.Parent())
	assert.Equal(t, "a", single.Leaf())
}
