// Package metrics records ingestion run metrics in a dedicated registry and
// exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	namespace = "frontfeed"
	subsystem = "ingest"

	statusLabel = "status"
	sourceLabel = "source"
)

// Recorder owns the run metrics. The zero value is not usable; a nil
// *Recorder is, and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	companiesProcessed prometheus.Gauge
	jobsFound          prometheus.Gauge
	companyErrors      *prometheus.CounterVec
	lastRun            prometheus.Gauge
}

// NewRecorder builds a Recorder and registers its metrics together with any
// extra collectors (for example the store's operation metrics).
func NewRecorder(extra ...prometheus.Collector) (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Number of ingestion runs by final status",
		}, []string{statusLabel}),
		companiesProcessed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "companies_processed",
			Help:      "Companies fetched successfully in the last run",
		}),
		jobsFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_found",
			Help:      "Eligible jobs found in the last run",
		}),
		companyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "company_errors_total",
			Help:      "Company fetches that failed, by ATS source",
		}, []string{sourceLabel}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	collectors := []prometheus.Collector{
		r.runsTotal, r.companiesProcessed, r.jobsFound, r.companyErrors, r.lastRun,
	}
	for _, c := range append(collectors, extra...) {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metric: %w", err)
		}
	}
	return r, nil
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// CompanyFailed counts one failed company fetch.
func (r *Recorder) CompanyFailed(source string) {
	if r == nil {
		return
	}
	r.companyErrors.With(prometheus.Labels{sourceLabel: source}).Inc()
}

// RunFinished records the outcome of a run.
func (r *Recorder) RunFinished(summary model.RunSummary) {
	if r == nil {
		return
	}
	r.runsTotal.With(prometheus.Labels{statusLabel: string(summary.Status)}).Inc()
	r.companiesProcessed.Set(float64(summary.CompaniesProcessed))
	r.jobsFound.Set(float64(summary.JobsFound))

	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes every registered metric to path. The write goes
// through a temp file so a collector never reads a partial file.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
