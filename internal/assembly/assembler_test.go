package assembly

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basekick-labs/slate/internal/filter"
	"github.com/basekick-labs/slate/internal/read"
	"github.com/basekick-labs/slate/internal/schema"
	"github.com/basekick-labs/slate/pkg/models"
)

type memBatch struct {
	rows int64
	cols map[string][]any
}

func (b *memBatch) NumRows() int64 { return b.rows }

func (b *memBatch) Column(path string) ([]any, bool) {
	v, ok := b.cols[path]
	return v, ok
}

type mapMat struct{}

func (mapMat) Materialize(fields map[string]any) (models.Record, error) {
	return models.Record(fields), nil
}

type failingMat struct {
	failOn any
}

func (m failingMat) Materialize(fields map[string]any) (models.Record, error) {
	for _, v := range fields {
		if v == m.failOn {
			return nil, errors.New("unconvertible value")
		}
	}
	return models.Record(fields), nil
}

func TestAssembleAllRows(t *testing.T) {
	sc, err := schema.Project([]schema.ColumnPath{{"a"}, {"b"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 3, cols: map[string][]any{
		"a": {int64(1), int64(2), int64(3)},
		"b": {"x", "y", "z"},
	}}

	factory := NewFactory(zerolog.Nop())
	asm, err := factory.NewAssembler(sc, sc, true, nil, batch, mapMat{})
	require.NoError(t, err)

	var records []models.Record
	for {
		out, err := asm.ReadRecord()
		require.NoError(t, err)
		if out.Kind == read.KindBlockExhausted {
			break
		}
		require.Equal(t, read.KindRecord, out.Kind)
		records = append(records, out.Record)
	}

	require.Len(t, records, 3)
	assert.Equal(t, models.Record{"a": int64(1), "b": "x"}, records[0])
	assert.Equal(t, models.Record{"a": int64(3), "b": "z"}, records[2])
}

func TestStrictRejectsMissingColumn(t *testing.T) {
	fileSchema, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	requested, err := schema.Project([]schema.ColumnPath{{"a"}, {"missing"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 1, cols: map[string][]any{"a": {int64(1)}}}

	factory := NewFactory(zerolog.Nop())
	_, err = factory.NewAssembler(requested, fileSchema, true, nil, batch, mapMat{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestNonStrictFillsMissingColumnWithNull(t *testing.T) {
	fileSchema, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	requested, err := schema.Project([]schema.ColumnPath{{"a"}, {"missing"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 1, cols: map[string][]any{"a": {int64(7)}}}

	factory := NewFactory(zerolog.Nop())
	asm, err := factory.NewAssembler(requested, fileSchema, false, nil, batch, mapMat{})
	require.NoError(t, err)

	out, err := asm.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, read.KindRecord, out.Kind)
	assert.Equal(t, models.Record{"a": int64(7), "missing": nil}, out.Record)
}

func TestMaterializationFailureIsCorruptOutcome(t *testing.T) {
	sc, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 2, cols: map[string][]any{"a": {int64(1), "poison"}}}

	factory := NewFactory(zerolog.Nop())
	asm, err := factory.NewAssembler(sc, sc, true, nil, batch, failingMat{failOn: "poison"})
	require.NoError(t, err)

	out, err := asm.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, read.KindRecord, out.Kind)

	out, err = asm.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, read.KindCorrupt, out.Kind)
	assert.Error(t, out.Err)

	out, err = asm.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, read.KindBlockExhausted, out.Kind)
}

func TestSkipperMarksRowsFiltered(t *testing.T) {
	sc, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 4, cols: map[string][]any{
		"a": {int64(0), int64(1), int64(2), int64(3)},
	}}
	flt := filter.Eq("a", int64(0))

	// Host-supplied evaluation: drop odd rows.
	skipOdd := func(f filter.Filter, row map[string]any) bool {
		v, _ := row["a"].(int64)
		return v%2 == 1
	}

	factory := NewFactory(zerolog.Nop()).WithSkipper(skipOdd)
	asm, err := factory.NewAssembler(sc, sc, true, flt, batch, mapMat{})
	require.NoError(t, err)

	var kinds []read.OutcomeKind
	for {
		out, err := asm.ReadRecord()
		require.NoError(t, err)
		kinds = append(kinds, out.Kind)
		if out.Kind == read.KindBlockExhausted {
			break
		}
	}
	assert.Equal(t, []read.OutcomeKind{
		read.KindRecord, read.KindFiltered, read.KindRecord, read.KindFiltered, read.KindBlockExhausted,
	}, kinds)
}

func TestSkipperIgnoredWithoutFilter(t *testing.T) {
	sc, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 1, cols: map[string][]any{"a": {int64(1)}}}

	factory := NewFactory(zerolog.Nop()).WithSkipper(func(filter.Filter, map[string]any) bool { return true })
	asm, err := factory.NewAssembler(sc, sc, true, nil, batch, mapMat{})
	require.NoError(t, err)

	out, err := asm.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, read.KindRecord, out.Kind)
}

func TestPageLengthMismatchIsFatal(t *testing.T) {
	sc, err := schema.Project([]schema.ColumnPath{{"a"}})
	require.NoError(t, err)
	batch := &memBatch{rows: 3, cols: map[string][]any{"a": {int64(1)}}}

	factory := NewFactory(zerolog.Nop())
	_, err = factory.NewAssembler(sc, sc, true, nil, batch, mapMat{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3-row group")
}
