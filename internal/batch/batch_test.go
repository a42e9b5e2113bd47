package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"erecord/internal/batch"
	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/recording"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
	"erecord/internal/submissions"
	"erecord/internal/testsupport"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	block chan struct{}
}

func (f *fakeSubmitter) CreatePackage(ctx context.Context, pkg *recording.Package) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, pkg.PackageID)
	f.mu.Unlock()
	if err := f.fail[pkg.PackageID]; err != nil {
		return "", err
	}
	return "SF-" + pkg.PackageID, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testRows(count int) ([]rowfeed.RowRecord, []docpair.DocumentPair) {
	rows := make([]rowfeed.RowRecord, count)
	pairs := make([]docpair.DocumentPair, count)
	for i := range rows {
		rows[i] = rowfeed.RowRecord{
			Index:            i,
			FileNo:           fmt.Sprintf("24-0%d", 100+i),
			Account:          fmt.Sprintf("10%04d", i),
			FirstName1:       "JOHN",
			LastName1:        "SMITH",
			DeedBook:         "1234",
			DeedPage:         "56",
			MortgageBook:     "789",
			MortgagePage:     "12",
			ExecutionDate:    "01/15/2024",
			Consideration:    "1500.00",
			GrantorGrantee:   "OCEAN CLUB LLC",
			LegalDescription: "UNIT 204 PHASE II",
		}
		pairs[i] = docpair.DocumentPair{
			Deed:         fmt.Sprintf("deeds/%03d.pdf", i),
			Satisfaction: fmt.Sprintf("sats/%03d.pdf", i),
		}
	}
	return rows, pairs
}

func newOrchestrator(t *testing.T, submitter batch.Submitter) (*batch.Orchestrator, *submissions.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := submissions.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return batch.New(cfg, county.Builtin(), submitter, store, nil, nil), store
}

func TestRunSubmitsAllRows(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, store := newOrchestrator(t, submitter)
	rows, pairs := testRows(5)

	result, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Submitted != 5 || result.Summary.Invalid != 0 || result.Summary.Failed != 0 {
		t.Fatalf("summary = %+v", result.Summary)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(result.Rows))
	}
	for i, row := range result.Rows {
		if row.RowIndex != i {
			t.Fatalf("rows not ordered: %+v", result.Rows)
		}
		if row.Status != recording.StatusSubmitted || row.RemoteID == "" {
			t.Fatalf("row %d = %+v", i, row)
		}
	}

	records, err := store.ListByBatch(context.Background(), result.BatchID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("persisted records = %d, want 5", len(records))
	}
	for _, record := range records {
		if record.Status != recording.StatusSubmitted {
			t.Fatalf("persisted status = %s", record.Status)
		}
	}
}

func TestRunMisalignmentAbortsBeforeAnySubmission(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, _ := newOrchestrator(t, submitter)
	rows, pairs := testRows(10)
	pairs = pairs[:9]

	_, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{})
	if err == nil {
		t.Fatal("expected structural error")
	}
	if !errors.Is(err, services.ErrStructural) {
		t.Fatalf("error not structural: %v", err)
	}
	if submitter.callCount() != 0 {
		t.Fatal("no row may be submitted after a structural failure")
	}
}

func TestRunUnknownCounty(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, _ := newOrchestrator(t, submitter)
	rows, pairs := testRows(1)

	_, err := orch.Run(context.Background(), "XX999", rows, pairs, batch.Options{})
	var unknown *county.UnknownJurisdictionError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want unknown jurisdiction", err)
	}
	if submitter.callCount() != 0 {
		t.Fatal("nothing may be submitted for an unknown county")
	}
}

func TestRunIsolatesInvalidRows(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, _ := newOrchestrator(t, submitter)
	rows, pairs := testRows(5)
	rows[2].ExecutionDate = "" // required by the Horry profile

	result, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Submitted != 4 || result.Summary.Invalid != 1 {
		t.Fatalf("summary = %+v", result.Summary)
	}
	bad := result.Rows[2]
	if bad.Status != recording.StatusInvalid || bad.ErrorDetail == "" {
		t.Fatalf("row 2 = %+v", bad)
	}
	for i, row := range result.Rows {
		if i == 2 {
			continue
		}
		if row.Status != recording.StatusSubmitted {
			t.Fatalf("row %d affected by row 2's failure: %+v", i, row)
		}
	}
}

func TestRunIsolatesTransportFailures(t *testing.T) {
	rows, pairs := testRows(3)
	submitter := &fakeSubmitter{
		fail: map[string]error{
			"24-0101-100001": services.Wrap(services.ErrTransport, "simplifile", "create package", "timeout", nil),
		},
	}
	orch, _ := newOrchestrator(t, submitter)

	result, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summary.Submitted != 2 || result.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", result.Summary)
	}
	if result.Rows[1].Status != recording.StatusFailed {
		t.Fatalf("row 1 = %+v", result.Rows[1])
	}
}

func TestRunDryRunSkipsSubmission(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, store := newOrchestrator(t, submitter)
	rows, pairs := testRows(3)

	result, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{SkipSubmit: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if submitter.callCount() != 0 {
		t.Fatal("dry run must not submit")
	}
	if result.Summary.Validated != 3 || result.Summary.Submitted != 0 {
		t.Fatalf("summary = %+v", result.Summary)
	}

	records, err := store.ListByBatch(context.Background(), result.BatchID)
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	for _, record := range records {
		if record.Status != recording.StatusValidated {
			t.Fatalf("persisted status = %s, want validated", record.Status)
		}
	}
}

func TestRunProgressEvents(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, _ := newOrchestrator(t, submitter)
	rows, pairs := testRows(2)

	var mu sync.Mutex
	var events []batch.ProgressEvent
	_, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{
		Progress: func(event batch.ProgressEvent) {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// validated + submitted per row
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
	var submitted int
	for _, event := range events {
		if event.Status == recording.StatusSubmitted {
			submitted++
		}
		if event.PackageName == "" {
			t.Fatalf("event missing package name: %+v", event)
		}
	}
	if submitted != 2 {
		t.Fatalf("submitted events = %d, want 2", submitted)
	}
}

func TestRunCancelledBeforeSubmission(t *testing.T) {
	submitter := &fakeSubmitter{}
	orch, _ := newOrchestrator(t, submitter)
	rows, pairs := testRows(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := orch.Run(ctx, "SCCP49", rows, pairs, batch.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Summary.Cancelled {
		t.Fatal("summary must report cancellation")
	}
	if submitter.callCount() != 0 {
		t.Fatal("cancelled batch must not submit")
	}
	if result.Summary.Submitted != 0 {
		t.Fatalf("summary = %+v", result.Summary)
	}
}

func TestRunRowErrorsNeverEscape(t *testing.T) {
	rows, pairs := testRows(2)
	submitter := &fakeSubmitter{
		fail: map[string]error{
			"24-0100-100000": errors.New("unclassified explosion"),
		},
	}
	orch, _ := newOrchestrator(t, submitter)

	result, err := orch.Run(context.Background(), "SCCP49", rows, pairs, batch.Options{})
	if err != nil {
		t.Fatalf("row error escaped the run: %v", err)
	}
	if result.Rows[0].Status != recording.StatusFailed {
		t.Fatalf("row 0 = %+v", result.Rows[0])
	}
	if !strings.Contains(result.Rows[0].ErrorDetail, "explosion") {
		t.Fatalf("error detail = %q", result.Rows[0].ErrorDetail)
	}
}
