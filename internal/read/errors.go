package read

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSource is returned by Initialize when no row-group source is supplied.
	ErrNilSource = errors.New("read: nil row group source")
	// ErrNotInitialized is returned by Next before a successful Initialize.
	ErrNotInitialized = errors.New("read: reader not initialized")
	// ErrReaderClosed is returned by calls after Close.
	ErrReaderClosed = errors.New("read: reader closed")
	// ErrReaderFailed is returned by calls after an unrecoverable fault.
	ErrReaderFailed = errors.New("read: reader failed")
	// ErrTooManyCorruptRecords is the fatal error raised once the corrupt
	// record tolerance is breached.
	ErrTooManyCorruptRecords = errors.New("read: too many corrupt records")
)

// DecodingError wraps any unrecoverable fault during streaming with enough
// positional context to locate the corruption.
type DecodingError struct {
	Row   int64
	Block int64
	File  string
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("cannot read record at row %d in block %d in file %s: %v", e.Row, e.Block, e.File, e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}
