package pagefile

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/klauspost/compress/snappy"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/basekick-labs/slate/internal/read"
)

// Reader is the file-backed row-group source over a page container. It
// implements read.RowGroupSource: positioned reads, one decoded row group
// per NextRowGroup call. Exclusively owned by one streaming reader.
type Reader struct {
	file   *os.File
	path   string
	footer fileFooter
	schema *pqschema.Schema
	total  int64
	next   int
	closed bool
	logger zerolog.Logger
}

// Open reads and validates the footer of the container at path.
func Open(path string, logger zerolog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pagefile: opening %s: %w", path, err)
	}

	r := &Reader{
		file:   f,
		path:   path,
		logger: logger.With().Str("component", "pagefile-reader").Str("file", path).Logger(),
	}
	if err := r.readFooter(); err != nil {
		f.Close()
		return nil, err
	}

	r.schema, err = buildSchema(r.footer.Columns)
	if err != nil {
		f.Close()
		return nil, err
	}
	for _, g := range r.footer.RowGroups {
		r.total += g.NumRows
	}

	r.logger.Debug().
		Int("columns", len(r.footer.Columns)).
		Int("row_groups", len(r.footer.RowGroups)).
		Int64("total_rows", r.total).
		Msg("Container opened")
	return r, nil
}

func (r *Reader) readFooter() error {
	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("pagefile: stat %s: %w", r.path, err)
	}
	size := info.Size()
	if size < int64(len(Magic))+trailerSize {
		return fmt.Errorf("pagefile: %s is too short to be a page container", r.path)
	}

	head := make([]byte, len(Magic))
	if _, err := r.file.ReadAt(head, 0); err != nil {
		return fmt.Errorf("pagefile: reading magic: %w", err)
	}
	if !bytes.Equal(head, Magic) {
		return fmt.Errorf("pagefile: %s has no leading magic", r.path)
	}

	trailer := make([]byte, trailerSize)
	if _, err := r.file.ReadAt(trailer, size-trailerSize); err != nil {
		return fmt.Errorf("pagefile: reading trailer: %w", err)
	}
	if !bytes.Equal(trailer[4:], Magic) {
		return fmt.Errorf("pagefile: %s has no trailing magic", r.path)
	}
	footerLen := int64(binary.LittleEndian.Uint32(trailer[:4]))
	if footerLen > MaxFooterSize || footerLen > size-trailerSize-int64(len(Magic)) {
		return fmt.Errorf("pagefile: %s declares an implausible footer length %d", r.path, footerLen)
	}

	footer := make([]byte, footerLen)
	if _, err := r.file.ReadAt(footer, size-trailerSize-footerLen); err != nil {
		return fmt.Errorf("pagefile: reading footer: %w", err)
	}
	if err := msgpack.Unmarshal(footer, &r.footer); err != nil {
		return fmt.Errorf("pagefile: decoding footer: %w", err)
	}
	return nil
}

func (r *Reader) Path() string { return r.path }

// RowCount is the total row count the footer declares.
func (r *Reader) RowCount() int64 { return r.total }

// FileSchema is the container's column set as a flat parquet schema.
func (r *Reader) FileSchema() *pqschema.Schema { return r.schema }

// KeyValueMetadata is the footer's raw metadata map.
func (r *Reader) KeyValueMetadata() map[string]string { return r.footer.Metadata }

// NextRowGroup decodes every column page of the next row group into memory.
// Returns (nil, nil) once all row groups have been delivered.
func (r *Reader) NextRowGroup(ctx context.Context) (read.PageBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.closed {
		return nil, fmt.Errorf("pagefile: reader closed")
	}
	if r.next >= len(r.footer.RowGroups) {
		return nil, nil
	}

	group := r.footer.RowGroups[r.next]
	r.next++

	batch := &memBatch{rows: group.NumRows, cols: make(map[string][]any, len(r.footer.Columns))}
	for i, col := range r.footer.Columns {
		if i >= len(group.Pages) {
			return nil, fmt.Errorf("pagefile: row group %d has no page for column %q", r.next-1, col.Name)
		}
		ref := group.Pages[i]
		page := make([]byte, ref.Length)
		if _, err := r.file.ReadAt(page, ref.Offset); err != nil {
			return nil, fmt.Errorf("pagefile: reading column %q page: %w", col.Name, err)
		}
		payload, err := snappy.Decode(nil, page)
		if err != nil {
			return nil, fmt.Errorf("pagefile: decompressing column %q page: %w", col.Name, err)
		}
		var values []any
		if err := msgpack.Unmarshal(payload, &values); err != nil {
			return nil, fmt.Errorf("pagefile: decoding column %q page: %w", col.Name, err)
		}
		if int64(len(values)) != group.NumRows {
			return nil, fmt.Errorf("pagefile: column %q page has %d values, footer declares %d rows",
				col.Name, len(values), group.NumRows)
		}
		batch.cols[col.Name] = values
	}
	return batch, nil
}

// Close releases the file. Idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// memBatch is one row group decoded into memory.
type memBatch struct {
	rows int64
	cols map[string][]any
}

func (b *memBatch) NumRows() int64 { return b.rows }

func (b *memBatch) Column(path string) ([]any, bool) {
	v, ok := b.cols[path]
	return v, ok
}
