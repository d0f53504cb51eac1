package read

import (
	"fmt"

	"github.com/rs/zerolog"
)

// badRecordPolicy tracks the corrupt-record rate for one reader against a
// tolerance threshold. Scoped per reader instance; never shared.
type badRecordPolicy struct {
	totalRows int64
	threshold float64 // tolerated failures/totalRows, in [0, 1]
	failures  int64
	logger    zerolog.Logger
}

func newBadRecordPolicy(totalRows int64, threshold float64, logger zerolog.Logger) *badRecordPolicy {
	return &badRecordPolicy{
		totalRows: totalRows,
		threshold: threshold,
		logger:    logger,
	}
}

// record tallies one materialization failure. It returns a fatal error once
// the failure rate exceeds the threshold; until then the caller skips the
// row and continues.
func (p *badRecordPolicy) record(cause error) error {
	p.failures++
	rate := float64(p.failures) / float64(p.totalRows)
	if rate > p.threshold {
		return fmt.Errorf("%w: %d corrupt out of %d rows exceeds threshold %.4f: %v",
			ErrTooManyCorruptRecords, p.failures, p.totalRows, p.threshold, cause)
	}
	p.logger.Warn().
		Err(cause).
		Int64("failures", p.failures).
		Int64("total_rows", p.totalRows).
		Float64("threshold", p.threshold).
		Msg("Skipping corrupt record")
	return nil
}

func (p *badRecordPolicy) failureCount() int64 {
	return p.failures
}
