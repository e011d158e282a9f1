package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/amishk599/frontfeed/internal/model"
)

var errDiskFull = errors.New("disk full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory model.Store with the same reconciliation rules
// as the SQL store.
type memStore struct {
	mu        sync.Mutex
	jobs      map[string]model.JobRecord
	companies []model.Company
	runs      []model.Run
	nextID    int64

	upsertErr   error
	failAfter   int
	upsertCalls int
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]model.JobRecord)}
}

func jobKey(source, sourceID string) string { return source + "\x00" + sourceID }

func (s *memStore) UpsertJob(_ context.Context, rec model.JobRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.upsertErr != nil && s.upsertCalls > s.failAfter {
		return false, s.upsertErr
	}
	key := jobKey(rec.Source, rec.SourceID)
	if existing, ok := s.jobs[key]; ok {
		rec.ID = existing.ID
		rec.FoundAt = existing.FoundAt
		s.jobs[key] = rec
		return false, nil
	}
	s.nextID++
	rec.ID = s.nextID
	s.jobs[key] = rec
	return true, nil
}

func (s *memStore) FindJob(_ context.Context, source, sourceID string) (model.JobRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobKey(source, sourceID)]
	return rec, ok, nil
}

func (s *memStore) ListJobs(_ context.Context, afterID int64, limit int) ([]model.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.JobRecord
	for _, rec := range s.jobs {
		if rec.ID > afterID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) UpdateClassification(_ context.Context, rec model.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey(rec.Source, rec.SourceID)
	existing, ok := s.jobs[key]
	if !ok || existing.ID != rec.ID {
		return errors.New("job not found")
	}
	rec.FoundAt = existing.FoundAt
	rec.Raw = existing.Raw
	s.jobs[key] = rec
	return nil
}

func (s *memStore) SyncCompanies(_ context.Context, companies []model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
outer:
	for _, c := range companies {
		for i := range s.companies {
			if s.companies[i].Name == c.Name {
				c.ID = s.companies[i].ID
				s.companies[i] = c
				continue outer
			}
		}
		c.ID = int64(len(s.companies) + 1)
		s.companies = append(s.companies, c)
	}
	return nil
}

func (s *memStore) ListCompanies(context.Context) ([]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Company(nil), s.companies...), nil
}

func (s *memStore) StartRun(context.Context) (model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := model.Run{ID: "run-1", Status: model.RunRunning, StartedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s.runs = append(s.runs, run)
	return run, nil
}

func (s *memStore) FinishRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i] = run
			return nil
		}
	}
	return errors.New("run not found")
}

func (s *memStore) ListRuns(context.Context, int) ([]model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Run(nil), s.runs...), nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) lastRun() model.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[len(s.runs)-1]
}

// fakeFetcher serves canned results keyed by ATS type.
type fakeFetcher struct {
	results map[string]model.FetchResult
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, atsType, atsSlug string) (model.FetchResult, error) {
	f.calls = append(f.calls, atsType+":"+atsSlug)
	if err := f.errs[atsType]; err != nil {
		return model.FetchResult{Source: atsType}, err
	}
	if res, ok := f.results[atsType]; ok {
		return res, nil
	}
	return model.FetchResult{Source: atsType, Jobs: []model.RawJob{}}, nil
}

// recordingNotifier captures every summary it is sent.
type recordingNotifier struct {
	summaries []Summary
	err       error
}

func (n *recordingNotifier) NotifyRun(_ context.Context, s Summary) error {
	n.summaries = append(n.summaries, s)
	return n.err
}

func frontendJob(id, title string) model.RawJob {
	return model.RawJob{
		ID:          id,
		Title:       title,
		Location:    "Remote - United States",
		Description: "Build React interfaces. Pay $120k-$150k.",
		ApplyURL:    "https://example.com/jobs/" + id,
	}
}

func backendJob(id string) model.RawJob {
	return model.RawJob{
		ID:          id,
		Title:       "Database Administrator",
		Location:    "London, UK",
		Description: "Tune Postgres.",
		ApplyURL:    "https://example.com/jobs/" + id,
	}
}
