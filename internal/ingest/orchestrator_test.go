package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/amishk599/frontfeed/internal/eligibility"
	"github.com/amishk599/frontfeed/internal/metrics"
	"github.com/amishk599/frontfeed/internal/model"
	"github.com/amishk599/frontfeed/internal/normalize"
	"github.com/amishk599/frontfeed/internal/store"
)

var (
	day1 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func newTestOrchestrator(s model.Store, f Fetcher, clock time.Time, opts ...Option) *Orchestrator {
	n := normalize.New(nil, normalize.WithClock(func() time.Time { return clock }))
	return NewOrchestrator(s, f, n, eligibility.New(nil), discardLogger(), opts...)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeEligibleOnly, false},
		{"eligible", ModeEligibleOnly, false},
		{"all", ModeStoreAll, false},
		{"everything", "", true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestRun_EligibleOnly(t *testing.T) {
	s := newMemStore()
	f := &fakeFetcher{results: map[string]model.FetchResult{
		"greenhouse": {Source: "greenhouse", Jobs: []model.RawJob{
			frontendJob("1", "Frontend Engineer"),
			backendJob("2"),
		}},
	}}
	o := newTestOrchestrator(s, f, day1)

	summary, err := o.Run(context.Background(), []model.Company{
		{Name: "Acme", ATSType: "greenhouse", ATSSlug: "acme"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Status != model.RunSuccess {
		t.Errorf("status = %s, want success", summary.Status)
	}
	if summary.CompaniesProcessed != 1 || summary.JobsFetched != 2 || summary.JobsFound != 1 {
		t.Errorf("unexpected counters %+v", summary)
	}
	if summary.Inserted != 1 || summary.Updated != 0 {
		t.Errorf("inserted/updated = %d/%d, want 1/0", summary.Inserted, summary.Updated)
	}
	if _, ok, _ := s.FindJob(context.Background(), "greenhouse", "2"); ok {
		t.Error("ineligible job should not be persisted in eligible-only mode")
	}
	rec, ok, _ := s.FindJob(context.Background(), "greenhouse", "1")
	if !ok {
		t.Fatal("eligible job not persisted")
	}
	if !rec.Eligible || rec.CompanyID != 1 {
		t.Errorf("unexpected record %+v", rec)
	}

	run := s.lastRun()
	if run.Status != model.RunSuccess || run.CompaniesProcessed != 1 || run.JobsFound != 1 {
		t.Errorf("run record not finished correctly: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Error("run record missing finished_at")
	}
}

func TestRun_StoreAllPersistsIneligible(t *testing.T) {
	s := newMemStore()
	f := &fakeFetcher{results: map[string]model.FetchResult{
		"lever": {Source: "lever", Jobs: []model.RawJob{frontendJob("a", "React Developer"), backendJob("b")}},
	}}
	o := newTestOrchestrator(s, f, day1, WithMode(ModeStoreAll))

	summary, err := o.Run(context.Background(), []model.Company{{Name: "Acme", ATSType: "lever", ATSSlug: "acme"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.JobsFound != 1 {
		t.Errorf("jobs found = %d, want eligible count 1", summary.JobsFound)
	}
	if summary.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", summary.Inserted)
	}
	rec, ok, _ := s.FindJob(context.Background(), "lever", "b")
	if !ok || rec.Eligible {
		t.Errorf("expected ineligible job stored with eligible=false, got %+v ok=%v", rec, ok)
	}
}

func TestRun_SkipsCompaniesWithoutATS(t *testing.T) {
	s := newMemStore()
	f := &fakeFetcher{}
	o := newTestOrchestrator(s, f, day1)

	summary, err := o.Run(context.Background(), []model.Company{
		{Name: "NoType", ATSSlug: "x"},
		{Name: "NoSlug", ATSType: "lever"},
		{Name: "Acme", ATSType: "lever", ATSSlug: "acme"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(f.calls) != 1 || f.calls[0] != "lever:acme" {
		t.Errorf("fetch calls = %v, want only lever:acme", f.calls)
	}
	if summary.CompaniesProcessed != 1 {
		t.Errorf("companies processed = %d, want 1", summary.CompaniesProcessed)
	}
	if len(summary.CompanyErrors) != 0 {
		t.Errorf("skipped companies must not be errors: %+v", summary.CompanyErrors)
	}
	companies, _ := s.ListCompanies(context.Background())
	if len(companies) != 3 {
		t.Errorf("all seeds should be synced, got %d", len(companies))
	}
}

func TestRun_FetchErrorRecordedAndRunContinues(t *testing.T) {
	s := newMemStore()
	f := &fakeFetcher{
		errs: map[string]error{"workday": errors.New("dial tcp: connection refused")},
		results: map[string]model.FetchResult{
			"greenhouse": {Source: "greenhouse", Jobs: []model.RawJob{frontendJob("1", "UI Engineer")}},
		},
	}
	rec, err := metrics.NewRecorder()
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	o := newTestOrchestrator(s, f, day1, WithMetrics(rec))

	summary, err := o.Run(context.Background(), []model.Company{
		{Name: "Broken", ATSType: "workday", ATSSlug: "host|tenant|site"},
		{Name: "Acme", ATSType: "greenhouse", ATSSlug: "acme"},
	})
	if err != nil {
		t.Fatalf("a company fetch error must not fail the run: %v", err)
	}
	if summary.Status != model.RunSuccess {
		t.Errorf("status = %s, want success", summary.Status)
	}
	if summary.CompaniesProcessed != 1 || summary.JobsFound != 1 {
		t.Errorf("unexpected counters %+v", summary)
	}
	if len(summary.CompanyErrors) != 1 {
		t.Fatalf("expected 1 company error, got %+v", summary.CompanyErrors)
	}
	ce := summary.CompanyErrors[0]
	if ce.Company != "Broken" || ce.Source != "workday" || !strings.Contains(ce.Err, "connection refused") {
		t.Errorf("unexpected company error %+v", ce)
	}

	if n := testutil.CollectAndCount(rec.Registry(), "frontfeed_ingest_company_errors_total"); n != 1 {
		t.Errorf("expected one company error series, got %d", n)
	}
}

func TestRun_PersistenceErrorIsFatal(t *testing.T) {
	s := newMemStore()
	s.upsertErr = errDiskFull
	s.failAfter = 1
	f := &fakeFetcher{results: map[string]model.FetchResult{
		"greenhouse": {Source: "greenhouse", Jobs: []model.RawJob{
			frontendJob("1", "Frontend Engineer"),
			frontendJob("2", "Frontend Engineer II"),
		}},
		"lever": {Source: "lever", Jobs: []model.RawJob{frontendJob("3", "Frontend Engineer")}},
	}}
	n := &recordingNotifier{}
	o := newTestOrchestrator(s, f, day1, WithNotifier(n))

	summary, err := o.Run(context.Background(), []model.Company{
		{Name: "Acme", ATSType: "greenhouse", ATSSlug: "acme"},
		{Name: "Globex", ATSType: "lever", ATSSlug: "globex"},
	})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("Run() error = %v, want disk full", err)
	}
	if summary.Status != model.RunError {
		t.Errorf("status = %s, want error", summary.Status)
	}
	if !strings.Contains(summary.Error, "disk full") {
		t.Errorf("summary error = %q", summary.Error)
	}
	for _, call := range f.calls {
		if strings.HasPrefix(call, "lever:") {
			t.Error("remaining companies must not be processed after a persistence failure")
		}
	}

	run := s.lastRun()
	if run.Status != model.RunError || !strings.Contains(run.Error, "disk full") {
		t.Errorf("run record = %+v, want error status with message", run)
	}
	if len(n.summaries) != 1 || n.summaries[0].Status != model.RunError {
		t.Errorf("notifier should receive the failed run, got %+v", n.summaries)
	}

	// The job saved before the failure is still counted.
	if len(s.jobs) != 1 {
		t.Fatalf("persisted jobs = %d, want 1", len(s.jobs))
	}
	if summary.JobsFound != 1 || summary.Inserted != 1 || summary.Updated != 0 {
		t.Errorf("summary found=%d inserted=%d updated=%d, want 1/1/0", summary.JobsFound, summary.Inserted, summary.Updated)
	}
	if summary.JobsFetched != 2 || summary.CompaniesProcessed != 1 {
		t.Errorf("summary fetched=%d companies=%d, want 2/1", summary.JobsFetched, summary.CompaniesProcessed)
	}
	if run.JobsFound != 1 || run.CompaniesProcessed != 1 {
		t.Errorf("run record found=%d companies=%d, want 1/1", run.JobsFound, run.CompaniesProcessed)
	}
}

func TestRun_NotifierFailureDoesNotFailRun(t *testing.T) {
	s := newMemStore()
	n := &recordingNotifier{err: errors.New("webhook down")}
	o := newTestOrchestrator(s, &fakeFetcher{}, day1, WithNotifier(n))

	summary, err := o.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Status != model.RunSuccess || len(n.summaries) != 1 {
		t.Errorf("unexpected summary %+v, notified %d", summary, len(n.summaries))
	}
}

func TestRun_IgnoresCancellation(t *testing.T) {
	s := newMemStore()
	f := &fakeFetcher{results: map[string]model.FetchResult{
		"lever": {Source: "lever", Jobs: []model.RawJob{frontendJob("a", "Frontend Engineer")}},
	}}
	o := newTestOrchestrator(s, f, day1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.Run(ctx, []model.Company{{Name: "Acme", ATSType: "lever", ATSSlug: "acme"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Status != model.RunSuccess || summary.Inserted != 1 {
		t.Errorf("cancelled context should not interrupt a run: %+v", summary)
	}
}

func TestRun_ReconcilePreservesFoundAt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ingest.db")
	s, err := store.Open(context.Background(), store.DriverSQLite, dbPath, discardLogger())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()

	seeds := []model.Company{{Name: "Acme", ATSType: "greenhouse", ATSSlug: "acme"}}

	first := &fakeFetcher{results: map[string]model.FetchResult{
		"greenhouse": {Source: "greenhouse", Jobs: []model.RawJob{frontendJob("42", "Frontend Engineer")}},
	}}
	if _, err := newTestOrchestrator(s, first, day1).Run(context.Background(), seeds); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := &fakeFetcher{results: map[string]model.FetchResult{
		"greenhouse": {Source: "greenhouse", Jobs: []model.RawJob{frontendJob("42", "Senior Frontend Engineer")}},
	}}
	summary, err := newTestOrchestrator(s, second, day2).Run(context.Background(), seeds)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Inserted != 0 || summary.Updated != 1 {
		t.Errorf("second run inserted/updated = %d/%d, want 0/1", summary.Inserted, summary.Updated)
	}

	rec, ok, err := s.FindJob(context.Background(), "greenhouse", "42")
	if err != nil || !ok {
		t.Fatalf("FindJob: ok=%v err=%v", ok, err)
	}
	if rec.Title != "Senior Frontend Engineer" {
		t.Errorf("title = %q, want updated title", rec.Title)
	}
	if !rec.FoundAt.Equal(day1) {
		t.Errorf("found_at = %v, want first run's %v", rec.FoundAt, day1)
	}
	if rec.Level != model.LevelSenior {
		t.Errorf("level = %q, want senior after update", rec.Level)
	}

	runs, err := s.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 recorded runs, got %d", len(runs))
	}
}
