// Package assembly is the reference record-assembly engine for flat (non
// nested) schemas: it binds the requested schema against one row group's
// decoded column pages and yields tagged per-row outcomes.
//
// Filter predicates are never evaluated here. The filter rides along so a
// host engine can plug its own evaluation in through a RowSkipper; the
// default accepts every row.
package assembly

import (
	"fmt"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/slate/internal/filter"
	"github.com/basekick-labs/slate/internal/read"
	"github.com/basekick-labs/slate/internal/schema"
)

// RowSkipper decides whether the assembled row should be dropped for the
// given filter. Supplied by the host engine that owns predicate evaluation.
type RowSkipper func(f filter.Filter, row map[string]any) bool

// Factory builds flat assemblers and implements read.AssemblerFactory.
type Factory struct {
	skipper RowSkipper
	logger  zerolog.Logger
}

// NewFactory returns a factory with no row skipper: filters pass rows
// through untouched.
func NewFactory(logger zerolog.Logger) *Factory {
	return &Factory{
		logger: logger.With().Str("component", "assembly").Logger(),
	}
}

// WithSkipper sets the row skipper consulted for every assembled row when a
// filter is present.
func (f *Factory) WithSkipper(s RowSkipper) *Factory {
	f.skipper = s
	return f
}

// boundColumn is one requested leaf bound to its page values. values is nil
// for a leaf absent from the file schema (allowed in non-strict mode; the
// field materializes as null).
type boundColumn struct {
	path   string
	values []any
}

// NewAssembler reconciles the requested schema against the file schema for
// one row group and binds each requested leaf to its decoded page.
//
// Strict type checking requires every requested leaf to resolve to a leaf in
// the file schema. Projected schemas carry placeholder physical types, so
// strictness validates shape; value typing is the materializer's concern.
func (f *Factory) NewAssembler(requested, fileSchema *pqschema.Schema, strict bool, flt filter.Filter, batch read.PageBatch, mat read.Materializer) (read.Assembler, error) {
	leaves := schema.Leaves(requested)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("assembly: requested schema has no leaf columns")
	}

	numRows := batch.NumRows()
	columns := make([]boundColumn, 0, len(leaves))
	for _, leaf := range leaves {
		dotted := leaf.Dotted()
		if !schema.HasLeaf(fileSchema, leaf) {
			if strict {
				return nil, fmt.Errorf("assembly: requested column %q not in file schema", dotted)
			}
			f.logger.Debug().Str("column", dotted).Msg("Requested column absent from file, materializing as null")
			columns = append(columns, boundColumn{path: dotted})
			continue
		}
		values, ok := batch.Column(dotted)
		if !ok {
			return nil, fmt.Errorf("assembly: column %q missing from row group pages", dotted)
		}
		if int64(len(values)) != numRows {
			return nil, fmt.Errorf("assembly: column %q has %d values for a %d-row group", dotted, len(values), numRows)
		}
		columns = append(columns, boundColumn{path: dotted, values: values})
	}

	return &flatAssembler{
		columns: columns,
		numRows: numRows,
		filter:  flt,
		skipper: f.skipper,
		mat:     mat,
	}, nil
}

// flatAssembler walks one row group row by row.
type flatAssembler struct {
	columns []boundColumn
	numRows int64
	row     int64
	filter  filter.Filter
	skipper RowSkipper
	mat     read.Materializer
}

func (a *flatAssembler) ReadRecord() (read.Outcome, error) {
	if a.row >= a.numRows {
		return read.BlockExhaustedOutcome(), nil
	}
	idx := a.row
	a.row++

	fields := make(map[string]any, len(a.columns))
	for _, col := range a.columns {
		if col.values == nil {
			fields[col.path] = nil
			continue
		}
		fields[col.path] = col.values[idx]
	}

	if a.filter != nil && a.skipper != nil && a.skipper(a.filter, fields) {
		return read.FilteredOutcome(), nil
	}

	record, err := a.mat.Materialize(fields)
	if err != nil {
		return read.CorruptOutcome(fmt.Errorf("materializing row %d: %w", idx, err)), nil
	}
	return read.RecordOutcome(record), nil
}
