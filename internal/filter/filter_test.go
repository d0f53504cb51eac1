package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnsOfNil(t *testing.T) {
	assert.Nil(t, ColumnsOf(nil))
}

func TestColumnsOfSinglePredicate(t *testing.T) {
	f := Eq("host.name", "web-1")
	assert.Equal(t, []string{"host.name"}, ColumnsOf(f))
}

func TestColumnsOfTree(t *testing.T) {
	f := And(
		Or(Gt("cpu.usage", 0.9), Lt("mem.free", int64(1024))),
		Not(NotEq("host.name", "web-1")),
	)
	assert.Equal(t, []string{"cpu.usage", "mem.free", "host.name"}, ColumnsOf(f))
}

func TestColumnsOfDeduplicatesFirstSeen(t *testing.T) {
	f := And(
		Gt("cpu.usage", 0.5),
		Or(Lt("cpu.usage", 0.9), GtEq("mem.free", int64(0))),
	)
	assert.Equal(t, []string{"cpu.usage", "mem.free"}, ColumnsOf(f))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "==", OpEq.String())
	assert.Equal(t, "!=", OpNotEq.String())
	assert.Equal(t, "<", OpLt.String())
	assert.Equal(t, "<=", OpLtEq.String())
	assert.Equal(t, ">", OpGt.String())
	assert.Equal(t, ">=", OpGtEq.String())
}
