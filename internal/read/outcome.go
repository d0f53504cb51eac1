package read

import (
	"fmt"

	"github.com/basekick-labs/slate/pkg/models"
)

// OutcomeKind classifies the result of asking the assembly engine for one
// record. Every caller must handle all four kinds.
type OutcomeKind int

const (
	// KindRecord: a record was assembled and survived the filter.
	KindRecord OutcomeKind = iota
	// KindFiltered: the engine assembled a row the filter rejects.
	KindFiltered
	// KindCorrupt: the row could not be materialized; Err holds the cause.
	KindCorrupt
	// KindBlockExhausted: filtering made the engine run out of rows before
	// the declared block size. Not an error.
	KindBlockExhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindFiltered:
		return "filtered"
	case KindCorrupt:
		return "corrupt"
	case KindBlockExhausted:
		return "block-exhausted"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome is the tagged per-record result of Assembler.ReadRecord.
type Outcome struct {
	Kind   OutcomeKind
	Record models.Record // set for KindRecord
	Err    error         // set for KindCorrupt
}

// RecordOutcome wraps a successfully assembled record.
func RecordOutcome(rec models.Record) Outcome {
	return Outcome{Kind: KindRecord, Record: rec}
}

// FilteredOutcome marks a row the filter rejected.
func FilteredOutcome() Outcome {
	return Outcome{Kind: KindFiltered}
}

// CorruptOutcome marks a row that failed to materialize.
func CorruptOutcome(err error) Outcome {
	return Outcome{Kind: KindCorrupt, Err: err}
}

// BlockExhaustedOutcome marks early end of the current block.
func BlockExhaustedOutcome() Outcome {
	return Outcome{Kind: KindBlockExhausted}
}
