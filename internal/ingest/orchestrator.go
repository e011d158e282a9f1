// Package ingest runs the ingestion pipeline: sync companies, then for each
// configured company fetch, normalize, filter and reconcile its jobs.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/frontfeed/internal/metrics"
	"github.com/amishk599/frontfeed/internal/model"
)

// Mode selects which jobs a run persists.
type Mode string

const (
	// ModeEligibleOnly persists eligible jobs and drops the rest.
	ModeEligibleOnly Mode = "eligible"
	// ModeStoreAll persists every job with its eligibility flag.
	ModeStoreAll Mode = "all"
)

// ParseMode maps a config value onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeEligibleOnly:
		return ModeEligibleOnly, nil
	case ModeStoreAll:
		return ModeStoreAll, nil
	}
	return "", fmt.Errorf("unknown ingest mode %q", s)
}

// Summary is the result of one run.
type Summary = model.RunSummary

// Fetcher dispatches a company's ATS config to the matching adapter.
type Fetcher interface {
	Fetch(ctx context.Context, atsType, atsSlug string) (model.FetchResult, error)
}

// Normalizer turns a vendor job into its classified form.
type Normalizer interface {
	Normalize(raw model.RawJob, source string) model.NormalizedJob
}

// Orchestrator owns one ingestion run end to end.
type Orchestrator struct {
	store      model.Store
	fetcher    Fetcher
	normalizer Normalizer
	filter     model.JobFilter
	logger     *slog.Logger

	mode     Mode
	metrics  *metrics.Recorder
	notifier model.RunNotifier
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode sets which jobs are persisted. The default is ModeEligibleOnly.
func WithMode(m Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithMetrics records run outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// WithNotifier reports every finished run to n.
func WithNotifier(n model.RunNotifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithClock overrides the clock used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires a run pipeline from its collaborators.
func NewOrchestrator(
	store model.Store,
	fetcher Fetcher,
	normalizer Normalizer,
	filter model.JobFilter,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		fetcher:    fetcher,
		normalizer: normalizer,
		filter:     filter,
		logger:     logger,
		mode:       ModeEligibleOnly,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one ingestion run over seeds. A failed company fetch is
// recorded in the summary and the run moves on; a persistence failure ends
// the run with status error and is returned.
//
// Cancelling ctx does not interrupt a run. Once the run record exists it is
// always driven to a final status unless the process exits.
func (o *Orchestrator) Run(ctx context.Context, seeds []model.Company) (Summary, error) {
	ctx = context.WithoutCancel(ctx)

	run, err := o.store.StartRun(ctx)
	if err != nil {
		return Summary{Status: model.RunError, Error: err.Error()}, fmt.Errorf("starting run: %w", err)
	}
	summary := Summary{
		RunID:     run.ID,
		Status:    model.RunRunning,
		StartedAt: run.StartedAt,
	}
	o.logger.Info("ingest run started", "run_id", run.ID, "mode", string(o.mode), "seeds", len(seeds))

	runErr := o.process(ctx, seeds, &summary)

	summary.FinishedAt = o.now().UTC()
	summary.Status = model.RunSuccess
	if runErr != nil {
		summary.Status = model.RunError
		summary.Error = runErr.Error()
	}

	finished := summary.FinishedAt
	finishErr := o.store.FinishRun(ctx, model.Run{
		ID:                 summary.RunID,
		Status:             summary.Status,
		StartedAt:          summary.StartedAt,
		FinishedAt:         &finished,
		CompaniesProcessed: summary.CompaniesProcessed,
		JobsFound:          summary.JobsFound,
		Error:              summary.Error,
	})
	o.metrics.RunFinished(summary)

	o.logger.Info("ingest run finished",
		"run_id", summary.RunID,
		"status", string(summary.Status),
		"companies", summary.CompaniesProcessed,
		"fetched", summary.JobsFetched,
		"found", summary.JobsFound,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"company_errors", len(summary.CompanyErrors),
		"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String(),
	)

	if o.notifier != nil {
		if err := o.notifier.NotifyRun(ctx, summary); err != nil {
			o.logger.Warn("run notification failed", "run_id", summary.RunID, "error", err)
		}
	}

	if runErr != nil {
		return summary, runErr
	}
	if finishErr != nil {
		return summary, fmt.Errorf("finishing run %s: %w", summary.RunID, finishErr)
	}
	return summary, nil
}

func (o *Orchestrator) process(ctx context.Context, seeds []model.Company, summary *Summary) error {
	if err := o.store.SyncCompanies(ctx, seeds); err != nil {
		return fmt.Errorf("syncing companies: %w", err)
	}
	companies, err := o.store.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("listing companies: %w", err)
	}

	for _, company := range companies {
		if !company.Fetchable() {
			o.logger.Debug("skipping company without ATS config", "company", company.Name)
			continue
		}
		if err := o.processCompany(ctx, company, summary); err != nil {
			return err
		}
	}
	return nil
}

// processCompany returns only persistence errors. Fetch failures are
// recorded on the summary.
func (o *Orchestrator) processCompany(ctx context.Context, company model.Company, summary *Summary) error {
	result, err := o.fetcher.Fetch(ctx, company.ATSType, company.ATSSlug)
	if err != nil {
		o.logger.Warn("company fetch failed",
			"company", company.Name,
			"source", company.ATSType,
			"error", err,
		)
		summary.CompanyErrors = append(summary.CompanyErrors, model.CompanyError{
			Company: company.Name,
			Source:  company.ATSType,
			Err:     err.Error(),
		})
		o.metrics.CompanyFailed(company.ATSType)
		return nil
	}
	summary.CompaniesProcessed++
	summary.JobsFetched += len(result.Jobs)

	// Counters move per job so a persistence failure mid-company still
	// reports what was saved before it.
	var eligible, inserted, updated int
	for _, raw := range result.Jobs {
		job := o.normalizer.Normalize(raw, result.Source)
		ok := o.filter.Eligible(job)
		if !ok && o.mode != ModeStoreAll {
			continue
		}

		isNew, err := o.store.UpsertJob(ctx, model.JobRecord{
			CompanyID:     company.ID,
			Eligible:      ok,
			NormalizedJob: job,
		})
		if err != nil {
			return fmt.Errorf("upserting job %s/%s for %s: %w", job.Source, job.SourceID, company.Name, err)
		}
		if ok {
			eligible++
			summary.JobsFound++
		}
		if isNew {
			inserted++
			summary.Inserted++
		} else {
			updated++
			summary.Updated++
		}
	}

	o.logger.Info("processed company",
		"company", company.Name,
		"source", result.Source,
		"fetched", len(result.Jobs),
		"eligible", eligible,
		"inserted", inserted,
		"updated", updated,
	)
	return nil
}
