package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/frontfeed/internal/model"
)

// NopStore is the store used in dry-run mode. Companies are kept in memory so
// a run can resolve them; jobs and runs are accepted and dropped, so every
// job looks new on each run.
type NopStore struct {
	mu        sync.Mutex
	companies []model.Company
}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) UpsertJob(context.Context, model.JobRecord) (bool, error) {
	return true, nil
}

func (s *NopStore) UpdateClassification(context.Context, model.JobRecord) error {
	return nil
}

func (s *NopStore) ListJobs(context.Context, int64, int) ([]model.JobRecord, error) {
	return nil, nil
}

func (s *NopStore) FindJob(context.Context, string, string) (model.JobRecord, bool, error) {
	return model.JobRecord{}, false, nil
}

func (s *NopStore) SyncCompanies(_ context.Context, companies []model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range companies {
		if i := s.indexOf(c.Name); i >= 0 {
			c.ID = s.companies[i].ID
			s.companies[i] = c
			continue
		}
		c.ID = int64(len(s.companies) + 1)
		s.companies = append(s.companies, c)
	}
	return nil
}

func (s *NopStore) indexOf(name string) int {
	for i, c := range s.companies {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (s *NopStore) ListCompanies(context.Context) ([]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Company(nil), s.companies...), nil
}

func (s *NopStore) StartRun(context.Context) (model.Run, error) {
	return model.Run{ID: uuid.NewString(), Status: model.RunRunning, StartedAt: time.Now().UTC()}, nil
}

func (s *NopStore) FinishRun(context.Context, model.Run) error {
	return nil
}

func (s *NopStore) ListRuns(context.Context, int) ([]model.Run, error) {
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}

var (
	_ model.Store = (*NopStore)(nil)
	_ model.Store = (*SQLStore)(nil)
)
