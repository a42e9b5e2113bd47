// Package batch drives the build → validate → submit pipeline for one
// spreadsheet of recording packages.
package batch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"erecord/internal/align"
	"erecord/internal/build"
	"erecord/internal/config"
	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/logging"
	"erecord/internal/notifications"
	"erecord/internal/recording"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
	"erecord/internal/submissions"
	"erecord/internal/validate"
)

// Submitter creates draft packages at the recording service. The production
// implementation is the Simplifile client.
type Submitter interface {
	CreatePackage(ctx context.Context, pkg *recording.Package) (string, error)
}

// ProgressEvent reports one row's stage transition during a run.
type ProgressEvent struct {
	RowIndex    int
	PackageName string
	Status      recording.Status
	Detail      string
}

// ProgressFunc receives progress events. Callbacks run on the orchestrator's
// goroutines and must not block.
type ProgressFunc func(ProgressEvent)

// RowOutcome is the terminal record for one row of the batch.
type RowOutcome struct {
	RowIndex    int
	Status      recording.Status
	PackageName string
	PackageID   string
	RemoteID    string
	ErrorDetail string
}

// Summary aggregates a run's outcomes.
type Summary struct {
	Total     int
	Submitted int
	Validated int
	Invalid   int
	Failed    int
	Duration  time.Duration
	Cancelled bool
}

// Result is the full outcome of one batch run, rows ordered by index.
type Result struct {
	BatchID  string
	CountyID string
	Rows     []RowOutcome
	Summary  Summary
}

// Options tunes a single run.
type Options struct {
	// SkipSubmit stops after validation; nothing is sent to the service.
	SkipSubmit bool
	Progress   ProgressFunc
}

// Orchestrator coordinates a batch run end to end.
type Orchestrator struct {
	registry  *county.Registry
	submitter Submitter
	store     *submissions.Store
	notifier  notifications.Service
	logger    *slog.Logger
	workers   int
}

// New assembles an orchestrator. The store may be nil (outcomes are not
// persisted); the notifier may be nil (no notifications are sent).
func New(cfg *config.Config, registry *county.Registry, submitter Submitter, store *submissions.Store, notifier notifications.Service, logger *slog.Logger) *Orchestrator {
	workers := 1
	if cfg != nil && cfg.Submission.Workers > 0 {
		workers = cfg.Submission.Workers
	}
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	return &Orchestrator{
		registry:  registry,
		submitter: submitter,
		store:     store,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "batch"),
		workers:   workers,
	}
}

// Run executes the pipeline for one county. Structural problems (unknown
// county, row/pair misalignment) abort before any row is processed; row
// problems are isolated to their row.
func (o *Orchestrator) Run(ctx context.Context, countyID string, rows []rowfeed.RowRecord, pairs []docpair.DocumentPair, opts Options) (*Result, error) {
	started := time.Now()

	profile, err := o.registry.Get(countyID)
	if err != nil {
		o.notifyError(ctx, err)
		return nil, err
	}

	aligned, err := align.Align(rows, pairs)
	if err != nil {
		o.notifyError(ctx, err)
		return nil, err
	}

	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("batch started",
		logging.String("county", profile.ID),
		logging.Int("rows", len(aligned)))
	_ = o.notifier.NotifyBatchStarted(ctx, profile.ID, len(aligned))

	run := &runState{
		orchestrator: o,
		batchID:      batchID,
		profile:      profile,
		logger:       logger,
		progress:     opts.Progress,
		outcomes:     make(map[int]*RowOutcome, len(aligned)),
		records:      make(map[int]*submissions.Record, len(aligned)),
	}

	prepared, cancelled := run.buildAndValidate(ctx, aligned)

	if !opts.SkipSubmit && !cancelled {
		cancelled = run.submit(ctx, prepared)
	}

	result := run.collect(batchID, profile.ID, len(aligned), time.Since(started), cancelled)

	logger.Info("batch finished",
		logging.Int("submitted", result.Summary.Submitted),
		logging.Int("invalid", result.Summary.Invalid),
		logging.Int("failed", result.Summary.Failed),
		logging.Duration("duration", result.Summary.Duration),
		logging.Bool("cancelled", result.Summary.Cancelled))
	_ = o.notifier.NotifyBatchCompleted(ctx, result.Summary.Submitted, result.Summary.Invalid, result.Summary.Failed, result.Summary.Duration)

	return result, nil
}

func (o *Orchestrator) notifyError(ctx context.Context, err error) {
	o.logger.Error("batch aborted", logging.Error(err))
	_ = o.notifier.NotifyError(ctx, err, "batch run")
}

// runState carries the mutable pieces of one run. The mutex guards outcomes
// and records; submission workers are the only concurrent writers.
type runState struct {
	orchestrator *Orchestrator
	batchID      string
	profile      county.Profile
	logger       *slog.Logger
	progress     ProgressFunc

	mu       sync.Mutex
	outcomes map[int]*RowOutcome
	records  map[int]*submissions.Record
}

type preparedRow struct {
	index int
	pkg   *recording.Package
}

// buildAndValidate runs the local stages sequentially. It returns the rows
// that are fit to submit and whether cancellation stopped the loop early.
func (r *runState) buildAndValidate(ctx context.Context, aligned []align.Aligned) ([]preparedRow, bool) {
	var prepared []preparedRow
	for _, item := range aligned {
		if ctx.Err() != nil {
			return prepared, true
		}

		rowCtx := services.WithRowIndex(ctx, item.Index)
		pkg, err := build.Build(item.Row, item.Pair, r.profile)
		if err != nil {
			r.recordFailure(rowCtx, item.Index, "", "", err)
			continue
		}

		rowCtx = services.WithPackageName(rowCtx, pkg.Name)
		violations, err := validate.Validate(pkg, r.profile)
		if err != nil {
			r.recordFailure(rowCtx, item.Index, pkg.Name, pkg.PackageID, err)
			continue
		}
		if len(violations) > 0 {
			pkg.Status = recording.StatusInvalid
			r.record(rowCtx, item.Index, RowOutcome{
				RowIndex:    item.Index,
				Status:      recording.StatusInvalid,
				PackageName: pkg.Name,
				PackageID:   pkg.PackageID,
				ErrorDetail: validate.Summarize(violations),
			})
			continue
		}

		pkg.Status = recording.StatusValidated
		r.record(rowCtx, item.Index, RowOutcome{
			RowIndex:    item.Index,
			Status:      recording.StatusValidated,
			PackageName: pkg.Name,
			PackageID:   pkg.PackageID,
		})
		prepared = append(prepared, preparedRow{index: item.Index, pkg: pkg})
	}
	return prepared, false
}

// submit uploads validated rows over a bounded worker pool. Cancellation is
// honored between rows; a row already mid-upload is allowed to finish so the
// service is not left with a half-created package.
func (r *runState) submit(ctx context.Context, prepared []preparedRow) bool {
	if len(prepared) == 0 {
		return false
	}

	jobs := make(chan preparedRow)
	var wg sync.WaitGroup

	workers := r.orchestrator.workers
	if workers > len(prepared) {
		workers = len(prepared)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				r.submitOne(ctx, job)
			}
		}()
	}

	cancelled := false
	for _, job := range prepared {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		jobs <- job
	}
	close(jobs)
	wg.Wait()
	return cancelled || ctx.Err() != nil
}

func (r *runState) submitOne(ctx context.Context, job preparedRow) {
	rowCtx := services.WithPackageName(services.WithRowIndex(ctx, job.index), job.pkg.Name)

	// The upload itself runs to completion even if the batch is cancelled
	// mid-flight; only the per-request timeout bounds it.
	callCtx := context.WithoutCancel(rowCtx)
	remoteID, err := r.orchestrator.submitter.CreatePackage(callCtx, job.pkg)
	if err != nil {
		r.recordFailure(rowCtx, job.index, job.pkg.Name, job.pkg.PackageID, err)
		return
	}

	job.pkg.Status = recording.StatusSubmitted
	job.pkg.RemoteID = remoteID
	r.record(rowCtx, job.index, RowOutcome{
		RowIndex:    job.index,
		Status:      recording.StatusSubmitted,
		PackageName: job.pkg.Name,
		PackageID:   job.pkg.PackageID,
		RemoteID:    remoteID,
	})
}

func (r *runState) recordFailure(ctx context.Context, index int, packageName, packageID string, err error) {
	status := services.FailureStatus(err)
	r.record(ctx, index, RowOutcome{
		RowIndex:    index,
		Status:      status,
		PackageName: packageName,
		PackageID:   packageID,
		ErrorDetail: err.Error(),
	})
}

// record stores an outcome under the mutex, persists it, and emits progress.
func (r *runState) record(ctx context.Context, index int, outcome RowOutcome) {
	r.mu.Lock()
	r.outcomes[index] = &outcome
	record := r.records[index]
	r.mu.Unlock()

	logger := logging.WithContext(ctx, r.logger)
	switch outcome.Status {
	case recording.StatusInvalid, recording.StatusFailed:
		logger.Warn("row did not complete",
			logging.String("status", string(outcome.Status)),
			logging.String("detail", outcome.ErrorDetail))
	default:
		logger.Info("row advanced", logging.String("status", string(outcome.Status)))
	}

	r.persist(ctx, record, outcome)

	if r.progress != nil {
		r.progress(ProgressEvent{
			RowIndex:    outcome.RowIndex,
			PackageName: outcome.PackageName,
			Status:      outcome.Status,
			Detail:      outcome.ErrorDetail,
		})
	}
}

func (r *runState) persist(ctx context.Context, record *submissions.Record, outcome RowOutcome) {
	store := r.orchestrator.store
	if store == nil {
		return
	}
	// Outcomes are persisted even when the batch context was cancelled.
	ctx = context.WithoutCancel(ctx)

	if record == nil {
		record = &submissions.Record{
			BatchID:     r.batchID,
			RowIndex:    outcome.RowIndex,
			CountyID:    r.profile.ID,
			PackageName: outcome.PackageName,
			PackageID:   outcome.PackageID,
			RemoteID:    outcome.RemoteID,
			Status:      outcome.Status,
			ErrorDetail: outcome.ErrorDetail,
		}
		if err := store.Insert(ctx, record); err != nil {
			r.logger.Error("persist submission", logging.Error(err))
			return
		}
		r.mu.Lock()
		r.records[outcome.RowIndex] = record
		r.mu.Unlock()
		return
	}

	record.Status = outcome.Status
	record.RemoteID = outcome.RemoteID
	record.ErrorDetail = outcome.ErrorDetail
	if err := store.Update(ctx, record); err != nil {
		r.logger.Error("persist submission", logging.Error(err))
	}
}

func (r *runState) collect(batchID, countyID string, total int, duration time.Duration, cancelled bool) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]RowOutcome, 0, len(r.outcomes))
	for _, outcome := range r.outcomes {
		rows = append(rows, *outcome)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RowIndex < rows[j].RowIndex })

	summary := Summary{Total: total, Duration: duration, Cancelled: cancelled}
	for _, row := range rows {
		switch row.Status {
		case recording.StatusSubmitted:
			summary.Submitted++
		case recording.StatusValidated:
			summary.Validated++
		case recording.StatusInvalid:
			summary.Invalid++
		case recording.StatusFailed:
			summary.Failed++
		}
	}

	return &Result{BatchID: batchID, CountyID: countyID, Rows: rows, Summary: summary}
}
