// Package align enforces the positional correspondence between spreadsheet
// rows and document pairs before any package is built.
package align

import (
	"fmt"

	"erecord/internal/docpair"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
)

// Aligned joins one row with its document pair at the same ordinal position.
type Aligned struct {
	Index int
	Row   rowfeed.RowRecord
	Pair  docpair.DocumentPair
}

// Align pairs rows and document pairs positionally. The counts must match
// exactly; a mismatch aborts the batch before anything is built, because a
// skewed pairing would attach the wrong documents to every subsequent row.
func Align(rows []rowfeed.RowRecord, pairs []docpair.DocumentPair) ([]Aligned, error) {
	if len(rows) != len(pairs) {
		return nil, services.Wrap(services.ErrStructural, "align", "align",
			fmt.Sprintf("row count %d does not match document pair count %d", len(rows), len(pairs)), nil)
	}

	aligned := make([]Aligned, len(rows))
	for i := range rows {
		aligned[i] = Aligned{Index: i, Row: rows[i], Pair: pairs[i]}
	}
	return aligned, nil
}
