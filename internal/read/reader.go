// Package read streams logical records out of a columnar file, row group by
// row group: it pages column data in on demand, hands each group to a record
// assembly engine, applies the corrupt-record policy, and reports per-row
// progress. One goroutine per reader; no internal locking.
package read

import (
	"context"
	"fmt"
	"time"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/slate/internal/filter"
	"github.com/basekick-labs/slate/internal/schema"
	"github.com/basekick-labs/slate/pkg/models"
)

// State is the reader lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateExhausted
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config controls one reader instance.
type Config struct {
	// BadRecordThreshold is the tolerated fraction of corrupt records in
	// [0, 1]. Zero means the first corrupt record is fatal.
	BadRecordThreshold float64
	// StrictTypeChecking requires the requested schema to structurally
	// match the on-disk schema; when false a compatible subset is enough.
	StrictTypeChecking bool
}

// Stats is read/assembly telemetry. Observability only, never correctness.
type Stats struct {
	RecordsRead    int64
	FilteredRows   int64
	CorruptRows    int64
	BlocksLoaded   int64
	TimeReading    time.Duration
	TimeAssembling time.Duration
}

// StreamingReader drives the read path for one file: ensures a row group is
// loaded, asks the bound assembly engine for one record at a time, and
// classifies the outcome. Single-threaded and not reentrant: Next and Close
// must never overlap on the same instance.
type StreamingReader struct {
	id      string
	support ReadSupport
	factory AssemblerFactory
	filter  filter.Filter
	cfg     Config
	logger  zerolog.Logger

	state       State
	source      RowGroupSource
	fileSchema  *pqschema.Schema
	requested   *pqschema.Schema
	columnCount int
	mat         Materializer
	policy      *badRecordPolicy
	window      rowGroupWindow
	assembler   Assembler
	current     models.Record

	stats         Stats
	assembleStart time.Time
}

// NewStreamingReader builds an uninitialized reader. The filter may be nil;
// it is handed through to the assembly engine, never evaluated here.
func NewStreamingReader(support ReadSupport, factory AssemblerFactory, f filter.Filter, cfg Config, logger zerolog.Logger) *StreamingReader {
	id := uuid.NewString()
	return &StreamingReader{
		id:      id,
		support: support,
		factory: factory,
		filter:  f,
		cfg:     cfg,
		logger:  logger.With().Str("component", "streaming-reader").Str("reader_id", id).Logger(),
	}
}

// Initialize binds the reader to a row-group source: resolves the read
// context, derives the materializer, captures the total row count, and
// constructs the corruption policy.
func (r *StreamingReader) Initialize(ctx context.Context, source RowGroupSource) error {
	if source == nil {
		return ErrNilSource
	}
	if r.state != StateUninitialized {
		return fmt.Errorf("read: initialize called in state %s", r.state)
	}

	r.source = source
	r.fileSchema = source.FileSchema()
	meta := source.KeyValueMetadata()

	rc, err := r.support.Init(meta, r.fileSchema)
	if err != nil {
		return r.fail(fmt.Errorf("resolving read context: %w", err))
	}
	r.requested = rc.RequestedSchema
	if r.requested == nil {
		r.requested = r.fileSchema
	}
	r.columnCount = len(schema.Leaves(r.requested))

	r.mat, err = r.support.NewMaterializer(meta, r.fileSchema, rc)
	if err != nil {
		return r.fail(fmt.Errorf("deriving record materializer: %w", err))
	}

	total := source.RowCount()
	r.window.reset(total)
	r.policy = newBadRecordPolicy(total, r.cfg.BadRecordThreshold, r.logger)
	r.state = StateReady

	r.logger.Info().
		Str("file", source.Path()).
		Int64("total_rows", total).
		Int("columns", r.columnCount).
		Msg("Reader initialized")
	return nil
}

// Next advances to the next record. It returns false with a nil error on a
// clean end of stream; the record is retrievable via Record until the
// following call.
func (r *StreamingReader) Next(ctx context.Context) (bool, error) {
	switch r.state {
	case StateUninitialized:
		return false, ErrNotInitialized
	case StateClosed:
		return false, ErrReaderClosed
	case StateFailed:
		return false, ErrReaderFailed
	case StateExhausted:
		return false, nil
	}

	for {
		if r.window.exhausted() {
			r.finishBlockTelemetry()
			r.state = StateExhausted
			r.logger.Debug().Int64("rows", r.window.currentRow).Msg("End of stream")
			return false, nil
		}

		if err := r.ensureRowGroup(ctx); err != nil {
			return false, r.fail(r.wrapPositional(err))
		}

		r.window.currentRow++

		outcome, err := r.assembler.ReadRecord()
		if err != nil {
			return false, r.fail(r.wrapPositional(err))
		}

		switch outcome.Kind {
		case KindCorrupt:
			r.stats.CorruptRows++
			if ferr := r.policy.record(outcome.Err); ferr != nil {
				return false, r.fail(ferr)
			}
			continue
		case KindFiltered:
			r.stats.FilteredRows++
			continue
		case KindBlockExhausted:
			// Filtering ran the engine out of rows before the declared
			// block size. Fast-forward to the end of the loaded rows.
			r.window.currentRow = r.window.loadedSoFar
			r.logger.Debug().Int64("block", r.window.blockIndex).Msg("Assembly engine reached end of block early")
			continue
		case KindRecord:
			r.current = outcome.Record
			r.stats.RecordsRead++
			return true, nil
		default:
			return false, r.fail(fmt.Errorf("read: unexpected outcome kind %s", outcome.Kind))
		}
	}
}

// ensureRowGroup lazily loads the next row group once every loaded row has
// been consumed, then rebuilds the assembly engine binding for it.
func (r *StreamingReader) ensureRowGroup(ctx context.Context) error {
	if !r.window.needsLoad() {
		return nil
	}

	r.finishBlockTelemetry()

	start := time.Now()
	batch, err := r.source.NextRowGroup(ctx)
	if err != nil {
		return err
	}
	if batch == nil {
		// The footer promises more rows than the groups deliver. Never
		// silently truncate.
		return fmt.Errorf("expecting more rows but reached last row group: read %d out of %d",
			r.window.currentRow, r.window.totalRows)
	}
	elapsed := time.Since(start)
	r.stats.TimeReading += elapsed

	assembler, err := r.factory.NewAssembler(r.requested, r.fileSchema, r.cfg.StrictTypeChecking, r.filter, batch, r.mat)
	if err != nil {
		return fmt.Errorf("binding record assembly: %w", err)
	}
	r.assembler = assembler
	r.window.loaded(batch.NumRows())
	r.stats.BlocksLoaded++
	r.assembleStart = time.Now()

	r.logger.Debug().
		Int64("block", r.window.blockIndex).
		Int64("rows", batch.NumRows()).
		Dur("read_time", elapsed).
		Msg("Row group loaded")
	return nil
}

// finishBlockTelemetry folds the elapsed assembly time of the block just
// consumed into the stats and logs the running read/assembly split.
func (r *StreamingReader) finishBlockTelemetry() {
	if r.window.blockIndex < 0 || r.assembleStart.IsZero() {
		return
	}
	r.stats.TimeAssembling += time.Since(r.assembleStart)
	r.assembleStart = time.Time{}

	total := r.stats.TimeReading + r.stats.TimeAssembling
	if total <= 0 {
		return
	}
	r.logger.Info().
		Int64("rows_loaded", r.window.loadedSoFar).
		Int("columns", r.columnCount).
		Dur("time_reading", r.stats.TimeReading).
		Dur("time_assembling", r.stats.TimeAssembling).
		Float64("pct_reading", 100*float64(r.stats.TimeReading)/float64(total)).
		Msg("Block assembled")
}

// Record returns the record produced by the last successful Next. Valid
// until the following Next call.
func (r *StreamingReader) Record() models.Record {
	return r.current
}

// Progress is currentRow/totalRows in [0, 1], monotonic; 0 when the file
// declares no rows.
func (r *StreamingReader) Progress() float64 {
	return r.window.progress()
}

// State returns the lifecycle state.
func (r *StreamingReader) State() State {
	return r.state
}

// Stats returns a snapshot of the telemetry counters.
func (r *StreamingReader) Stats() Stats {
	return r.stats
}

// CorruptRecordCount is the number of rows skipped as unmaterializable.
func (r *StreamingReader) CorruptRecordCount() int64 {
	if r.policy == nil {
		return 0
	}
	return r.policy.failureCount()
}

// Close releases the row-group source. Idempotent, and safe after a failed
// or partial Initialize. Must not run concurrently with Next.
func (r *StreamingReader) Close() error {
	if r.state == StateClosed {
		return nil
	}
	r.state = StateClosed
	if r.source == nil {
		return nil
	}
	if err := r.source.Close(); err != nil {
		return fmt.Errorf("closing row group source: %w", err)
	}
	return nil
}

// fail transitions to the terminal failed state. Close may still run.
func (r *StreamingReader) fail(err error) error {
	r.state = StateFailed
	r.logger.Error().Err(err).Msg("Reader failed")
	return err
}

// wrapPositional attaches row/block/file context to an unrecoverable fault.
func (r *StreamingReader) wrapPositional(err error) error {
	file := ""
	if r.source != nil {
		file = r.source.Path()
	}
	return &DecodingError{
		Row:   r.window.currentRow,
		Block: r.window.blockIndex,
		File:  file,
		Err:   err,
	}
}
