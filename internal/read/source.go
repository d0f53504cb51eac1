package read

import (
	"context"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/basekick-labs/slate/internal/filter"
	"github.com/basekick-labs/slate/pkg/models"
)

// PageBatch is one row group's worth of decoded column pages. The streaming
// reader only ever asks for the row count; the assembly engine pulls values.
type PageBatch interface {
	// NumRows is the declared row count of this row group.
	NumRows() int64
	// Column returns the decoded values for a dotted leaf path, one entry
	// per row, and whether the column exists in this batch.
	Column(path string) ([]any, bool)
}

// RowGroupSource is a positioned reader yielding decoded column pages one
// row group per call. Page decoding, decompression, and footer parsing all
// live behind this boundary. A source is exclusively owned by one reader
// for its lifetime.
type RowGroupSource interface {
	// Path identifies the underlying file for error context.
	Path() string
	// RowCount is the total row count the footer declares.
	RowCount() int64
	// FileSchema is the on-disk schema.
	FileSchema() *pqschema.Schema
	// KeyValueMetadata is the footer's raw key/value metadata.
	KeyValueMetadata() map[string]string
	// NextRowGroup blocks until the next row group is decoded in memory.
	// Returns (nil, nil) once every row group has been delivered.
	// Cancellation surfaces through ctx as an error.
	NextRowGroup(ctx context.Context) (PageBatch, error)
	// Close releases the source. Idempotent.
	Close() error
}

// ReadContext is the resolved per-file read configuration: which schema the
// caller wants plus opaque properties for the materializer.
type ReadContext struct {
	// RequestedSchema is the schema to assemble. Nil means the full file
	// schema.
	RequestedSchema *pqschema.Schema
	// Properties carries resolver-specific state through to NewMaterializer.
	Properties map[string]string
}

// ReadSupport resolves a ReadContext from file-level metadata and derives
// the record materializer for it.
type ReadSupport interface {
	Init(keyValueMeta map[string]string, fileSchema *pqschema.Schema) (ReadContext, error)
	NewMaterializer(keyValueMeta map[string]string, fileSchema *pqschema.Schema, rc ReadContext) (Materializer, error)
}

// Materializer converts one row of assembled leaf values into a typed
// record. A materialization failure is recoverable: the reader tallies it
// against the bad-record policy and skips the row.
type Materializer interface {
	Materialize(fields map[string]any) (models.Record, error)
}

// AssemblerFactory builds a record assembly engine for one row group. The
// filter is passed through opaque; evaluating it is the engine's business.
type AssemblerFactory interface {
	NewAssembler(requested, fileSchema *pqschema.Schema, strict bool, f filter.Filter, batch PageBatch, mat Materializer) (Assembler, error)
}

// Assembler reconstructs nested records from one row group's flat columns.
type Assembler interface {
	// ReadRecord returns the tagged outcome for the next row. Errors are
	// engine faults and always fatal to the stream; per-row problems are
	// reported through the outcome instead.
	ReadRecord() (Outcome, error)
}
