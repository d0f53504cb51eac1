package pagefile

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/klauspost/compress/snappy"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Writer appends row groups to a page container. Single-threaded, one file.
type Writer struct {
	file   *os.File
	path   string
	offset int64
	footer fileFooter
	closed bool
	logger zerolog.Logger
}

// NewWriter creates path and writes the leading magic. The column set is
// fixed for the file's lifetime.
func NewWriter(path string, columns []Column, metadata map[string]string, logger zerolog.Logger) (*Writer, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("pagefile: no columns declared")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, err := physicalType(col.Type); err != nil {
			return nil, err
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("pagefile: duplicate column %q", col.Name)
		}
		seen[col.Name] = struct{}{}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("pagefile: creating %s: %w", path, err)
	}
	if _, err := f.Write(Magic); err != nil {
		f.Close()
		return nil, fmt.Errorf("pagefile: writing magic: %w", err)
	}

	return &Writer{
		file:   f,
		path:   path,
		offset: int64(len(Magic)),
		footer: fileFooter{Columns: columns, Metadata: metadata},
		logger: logger.With().Str("component", "pagefile-writer").Logger(),
	}, nil
}

// WriteRowGroup writes one page per declared column. Every column must be
// present with the same length.
func (w *Writer) WriteRowGroup(columns map[string][]any) error {
	if w.closed {
		return fmt.Errorf("pagefile: writer closed")
	}

	numRows := int64(-1)
	for _, col := range w.footer.Columns {
		values, ok := columns[col.Name]
		if !ok {
			return fmt.Errorf("pagefile: row group missing column %q", col.Name)
		}
		if numRows < 0 {
			numRows = int64(len(values))
		} else if int64(len(values)) != numRows {
			return fmt.Errorf("pagefile: column %q has %d values, want %d", col.Name, len(values), numRows)
		}
	}

	group := rowGroupMeta{NumRows: numRows, Pages: make([]pageRef, 0, len(w.footer.Columns))}
	for _, col := range w.footer.Columns {
		payload, err := msgpack.Marshal(columns[col.Name])
		if err != nil {
			return fmt.Errorf("pagefile: encoding column %q: %w", col.Name, err)
		}
		page := snappy.Encode(nil, payload)
		if _, err := w.file.Write(page); err != nil {
			return fmt.Errorf("pagefile: writing column %q page: %w", col.Name, err)
		}
		group.Pages = append(group.Pages, pageRef{Offset: w.offset, Length: int64(len(page))})
		w.offset += int64(len(page))
	}

	w.footer.RowGroups = append(w.footer.RowGroups, group)
	w.logger.Debug().Int64("rows", numRows).Int("row_groups", len(w.footer.RowGroups)).Msg("Row group written")
	return nil
}

// Close writes the footer and trailer and syncs the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	footer, err := msgpack.Marshal(&w.footer)
	if err != nil {
		w.file.Close()
		return fmt.Errorf("pagefile: encoding footer: %w", err)
	}
	if _, err := w.file.Write(footer); err != nil {
		w.file.Close()
		return fmt.Errorf("pagefile: writing footer: %w", err)
	}

	trailer := make([]byte, trailerSize)
	binary.LittleEndian.PutUint32(trailer[:4], uint32(len(footer)))
	copy(trailer[4:], Magic)
	if _, err := w.file.Write(trailer); err != nil {
		w.file.Close()
		return fmt.Errorf("pagefile: writing trailer: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("pagefile: syncing %s: %w", w.path, err)
	}
	return w.file.Close()
}
