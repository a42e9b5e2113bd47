package align_test

import (
	"errors"
	"strings"
	"testing"

	"erecord/internal/align"
	"erecord/internal/docpair"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
)

func TestAlignMatchesPositionally(t *testing.T) {
	rows := []rowfeed.RowRecord{
		{Index: 0, FileNo: "24-0101"},
		{Index: 1, FileNo: "24-0102"},
	}
	pairs := []docpair.DocumentPair{
		{Deed: "d1.pdf", Satisfaction: "s1.pdf"},
		{Deed: "d2.pdf", Satisfaction: "s2.pdf"},
	}

	aligned, err := align.Align(rows, pairs)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(aligned) != 2 {
		t.Fatalf("aligned = %d, want 2", len(aligned))
	}
	if aligned[1].Row.FileNo != "24-0102" || aligned[1].Pair.Deed != "d2.pdf" {
		t.Fatalf("pairing out of order: %+v", aligned[1])
	}
	if aligned[1].Index != 1 {
		t.Fatalf("index = %d, want 1", aligned[1].Index)
	}
}

func TestAlignCountMismatchIsStructural(t *testing.T) {
	rows := make([]rowfeed.RowRecord, 10)
	pairs := make([]docpair.DocumentPair, 9)

	_, err := align.Align(rows, pairs)
	if err == nil {
		t.Fatal("expected structural error")
	}
	if !errors.Is(err, services.ErrStructural) {
		t.Fatalf("error is not structural: %v", err)
	}
	if !strings.Contains(err.Error(), "10") || !strings.Contains(err.Error(), "9") {
		t.Fatalf("error should name both counts: %v", err)
	}
}

func TestAlignEmpty(t *testing.T) {
	aligned, err := align.Align(nil, nil)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(aligned) != 0 {
		t.Fatalf("aligned = %d, want 0", len(aligned))
	}
}
