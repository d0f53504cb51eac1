package read

// rowGroupWindow is the cursor state over total rows, loaded rows, and the
// current block. Owned by exactly one StreamingReader and mutated only by
// its reading goroutine.
type rowGroupWindow struct {
	totalRows   int64 // fixed at Initialize
	loadedSoFar int64 // advances only on row-group boundary
	currentRow  int64 // 0..totalRows
	blockIndex  int64 // -1 until the first block is loaded
}

func (w *rowGroupWindow) reset(total int64) {
	*w = rowGroupWindow{totalRows: total, blockIndex: -1}
}

// needsLoad reports whether every loaded row has been consumed.
func (w *rowGroupWindow) needsLoad() bool {
	return w.currentRow == w.loadedSoFar
}

// loaded advances the window over a freshly loaded block of n rows.
func (w *rowGroupWindow) loaded(n int64) {
	w.loadedSoFar += n
	w.blockIndex++
}

func (w *rowGroupWindow) exhausted() bool {
	return w.currentRow >= w.totalRows
}

// progress is currentRow/totalRows, defined as 0 when totalRows is 0.
func (w *rowGroupWindow) progress() float64 {
	if w.totalRows == 0 {
		return 0
	}
	return float64(w.currentRow) / float64(w.totalRows)
}
