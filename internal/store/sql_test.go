package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/amishk599/frontfeed/internal/model"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), DriverSQLite, dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCompany(t *testing.T, s *SQLStore, name string) model.Company {
	t.Helper()
	ctx := context.Background()
	if err := s.SyncCompanies(ctx, []model.Company{{Name: name, ATSType: "greenhouse", ATSSlug: "acme"}}); err != nil {
		t.Fatalf("SyncCompanies: %v", err)
	}
	companies, err := s.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	for _, c := range companies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("company %s not found after sync", name)
	return model.Company{}
}

func testRecord(companyID int64, title string, foundAt time.Time) model.JobRecord {
	payMin, payMax := int64(120000), int64(150000)
	return model.JobRecord{
		CompanyID: companyID,
		Eligible:  true,
		NormalizedJob: model.NormalizedJob{
			Title:              title,
			Location:           "Austin, TX",
			WorkMode:           model.WorkModeOnsiteTX,
			EmploymentType:     "full-time",
			Level:              model.LevelSenior,
			PayMin:             &payMin,
			PayMax:             &payMax,
			PayCurrency:        "USD",
			DescriptionSnippet: "Build React apps.",
			PostedAt:           "2026-02-01",
			FoundAt:            foundAt,
			ApplyURL:           "https://example.com/apply/1",
			Source:             "greenhouse",
			SourceID:           "1",
			Raw:                model.RawJob{ID: "1", Title: title, Description: "Build React apps."},
		},
	}
}

func TestUpsertJob_PreservesFoundAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "Acme")

	firstSeen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	inserted, err := s.UpsertJob(ctx, testRecord(company.ID, "Frontend Engineer", firstSeen))
	if err != nil {
		t.Fatalf("first UpsertJob: %v", err)
	}
	if !inserted {
		t.Error("expected first upsert to insert")
	}

	later := firstSeen.Add(72 * time.Hour)
	inserted, err = s.UpsertJob(ctx, testRecord(company.ID, "Senior Frontend Engineer", later))
	if err != nil {
		t.Fatalf("second UpsertJob: %v", err)
	}
	if inserted {
		t.Error("expected second upsert to update")
	}

	rec, ok, err := s.FindJob(ctx, "greenhouse", "1")
	if err != nil {
		t.Fatalf("FindJob: %v", err)
	}
	if !ok {
		t.Fatal("expected job to exist")
	}
	if rec.Title != "Senior Frontend Engineer" {
		t.Errorf("expected updated title, got %s", rec.Title)
	}
	if !rec.FoundAt.Equal(firstSeen) {
		t.Errorf("expected found_at %v to survive, got %v", firstSeen, rec.FoundAt)
	}
	if rec.Raw.Title != "Senior Frontend Engineer" {
		t.Errorf("expected raw payload overwritten, got %s", rec.Raw.Title)
	}
	if rec.PayMin == nil || *rec.PayMin != 120000 {
		t.Errorf("expected pay min 120000, got %v", rec.PayMin)
	}
	if rec.WorkMode != model.WorkModeOnsiteTX || rec.Level != model.LevelSenior {
		t.Errorf("unexpected classification %s/%s", rec.WorkMode, rec.Level)
	}
	if !rec.Eligible {
		t.Error("expected eligible")
	}
}

func TestUpsertJob_NullPay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "Acme")

	rec := testRecord(company.ID, "Designer", time.Now())
	rec.PayMin, rec.PayMax, rec.PayCurrency = nil, nil, ""
	if _, err := s.UpsertJob(ctx, rec); err != nil {
		t.Fatalf("UpsertJob: %v", err)
	}
	got, _, err := s.FindJob(ctx, "greenhouse", "1")
	if err != nil {
		t.Fatalf("FindJob: %v", err)
	}
	if got.PayMin != nil || got.PayMax != nil {
		t.Errorf("expected nil pay, got %v %v", got.PayMin, got.PayMax)
	}
}

func TestFindJob_Missing(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.FindJob(context.Background(), "lever", "nope")
	if err != nil {
		t.Fatalf("FindJob: %v", err)
	}
	if ok {
		t.Error("expected missing job")
	}
}

func TestListJobs_PagesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "Acme")

	for _, id := range []string{"a", "b", "c"} {
		rec := testRecord(company.ID, "Job "+id, time.Now())
		rec.SourceID = id
		if _, err := s.UpsertJob(ctx, rec); err != nil {
			t.Fatalf("UpsertJob %s: %v", id, err)
		}
	}

	first, err := s.ListJobs(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(first))
	}
	rest, err := s.ListJobs(ctx, first[1].ID, 2)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(rest) != 1 || rest[0].SourceID != "c" {
		t.Errorf("expected only job c, got %+v", rest)
	}
}

func TestUpdateClassification(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "Acme")

	firstSeen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.UpsertJob(ctx, testRecord(company.ID, "Frontend Engineer", firstSeen)); err != nil {
		t.Fatalf("UpsertJob: %v", err)
	}
	rec, _, err := s.FindJob(ctx, "greenhouse", "1")
	if err != nil {
		t.Fatalf("FindJob: %v", err)
	}

	rec.WorkMode = model.WorkModeOther
	rec.Eligible = false
	rec.FoundAt = time.Now()
	if err := s.UpdateClassification(ctx, rec); err != nil {
		t.Fatalf("UpdateClassification: %v", err)
	}

	got, _, err := s.FindJob(ctx, "greenhouse", "1")
	if err != nil {
		t.Fatalf("FindJob: %v", err)
	}
	if got.WorkMode != model.WorkModeOther || got.Eligible {
		t.Errorf("expected reclassified job, got %s eligible=%v", got.WorkMode, got.Eligible)
	}
	if !got.FoundAt.Equal(firstSeen) {
		t.Errorf("expected found_at untouched, got %v", got.FoundAt)
	}

	rec.ID = 9999
	if err := s.UpdateClassification(ctx, rec); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestSyncCompanies_UpsertsByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SyncCompanies(ctx, []model.Company{
		{Name: "Acme", ATSType: "lever", ATSSlug: "acme"},
		{Name: "Globex"},
	}); err != nil {
		t.Fatalf("SyncCompanies: %v", err)
	}
	if err := s.SyncCompanies(ctx, []model.Company{
		{Name: "Acme", ATSType: "greenhouse", ATSSlug: "acme-inc", CareersURL: "https://acme.example.com/careers"},
	}); err != nil {
		t.Fatalf("second SyncCompanies: %v", err)
	}

	companies, err := s.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}
	acme := companies[0]
	if acme.Name != "Acme" || acme.ATSType != "greenhouse" || acme.ATSSlug != "acme-inc" {
		t.Errorf("expected Acme updated in place, got %+v", acme)
	}
	if acme.CareersURL != "https://acme.example.com/careers" {
		t.Errorf("unexpected careers URL %s", acme.CareersURL)
	}
	if companies[1].Fetchable() {
		t.Error("expected Globex to be unfetchable")
	}
}

func TestRuns_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.StartRun(ctx)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == "" || run.Status != model.RunRunning {
		t.Fatalf("unexpected run %+v", run)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].FinishedAt != nil {
		t.Fatalf("expected one unfinished run, got %+v", runs)
	}

	run.Status = model.RunError
	run.CompaniesProcessed = 4
	run.JobsFound = 7
	run.Error = "upserting job: disk full"
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err = s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	got := runs[0]
	if got.Status != model.RunError || got.CompaniesProcessed != 4 || got.JobsFound != 7 {
		t.Errorf("unexpected finished run %+v", got)
	}
	if got.Error != "upserting job: disk full" {
		t.Errorf("unexpected error message %q", got.Error)
	}
	if got.FinishedAt == nil {
		t.Error("expected finished_at to be set")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, dbPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SyncCompanies(ctx, []model.Company{{Name: "Acme"}}); err != nil {
		t.Fatalf("SyncCompanies: %v", err)
	}
	s.Close()

	s, err = Open(ctx, DriverSQLite, dbPath, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s.Close()
	companies, err := s.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(companies) != 1 {
		t.Errorf("expected data to survive reopen, got %d companies", len(companies))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x", nil); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestStoreMetrics_CountOperations(t *testing.T) {
	s := newTestStore(t)
	before := testutil.CollectAndCount(storeOpTotal)
	if _, err := s.ListCompanies(context.Background()); err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if after := testutil.CollectAndCount(storeOpTotal); after < before || after == 0 {
		t.Errorf("expected op series to be recorded, before %d after %d", before, after)
	}
}
