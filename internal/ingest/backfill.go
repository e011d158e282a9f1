package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	DefaultBackfillBatch = 500
	MaxBackfillBatch     = 1000
)

// BackfillResult counts what a backfill pass touched.
type BackfillResult struct {
	Processed int
	Updated   int
}

// Backfiller re-classifies stored jobs from their stored raw payload, so a
// change to the keyword vocabulary or the normalizer reaches old rows
// without refetching.
type Backfiller struct {
	store      model.JobStore
	normalizer Normalizer
	filter     model.JobFilter
	logger     *slog.Logger
	batch      int
}

// NewBackfiller creates a Backfiller. batch is clamped to
// [1, MaxBackfillBatch]; zero means DefaultBackfillBatch.
func NewBackfiller(store model.JobStore, normalizer Normalizer, filter model.JobFilter, logger *slog.Logger, batch int) *Backfiller {
	switch {
	case batch <= 0:
		batch = DefaultBackfillBatch
	case batch > MaxBackfillBatch:
		batch = MaxBackfillBatch
	}
	return &Backfiller{
		store:      store,
		normalizer: normalizer,
		filter:     filter,
		logger:     logger,
		batch:      batch,
	}
}

// Run walks every stored job in id order. It stops at the first store error
// or when ctx is cancelled between batches.
func (b *Backfiller) Run(ctx context.Context) (BackfillResult, error) {
	var (
		res     BackfillResult
		afterID int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		recs, err := b.store.ListJobs(ctx, afterID, b.batch)
		if err != nil {
			return res, fmt.Errorf("listing jobs after %d: %w", afterID, err)
		}
		if len(recs) == 0 {
			break
		}

		for _, rec := range recs {
			res.Processed++
			if err := b.store.UpdateClassification(ctx, b.reclassify(rec)); err != nil {
				return res, err
			}
			res.Updated++
		}
		afterID = recs[len(recs)-1].ID
		b.logger.Info("backfill batch complete", "processed", res.Processed, "last_id", afterID)

		if len(recs) < b.batch {
			break
		}
	}
	return res, nil
}

// reclassify recomputes the derived fields of rec. Identity fields and
// found_at keep their stored values.
func (b *Backfiller) reclassify(rec model.JobRecord) model.JobRecord {
	n := b.normalizer.Normalize(storedRawJob(rec), rec.Source)

	out := rec
	out.WorkMode = n.WorkMode
	out.EmploymentType = n.EmploymentType
	out.Level = n.Level
	out.PayMin = n.PayMin
	out.PayMax = n.PayMax
	out.PayCurrency = n.PayCurrency
	out.DescriptionSnippet = n.DescriptionSnippet
	if n.PostedAt != "" {
		out.PostedAt = n.PostedAt
	}
	if out.Title == "" {
		out.Title = n.Title
	}
	if out.ApplyURL == "" {
		out.ApplyURL = n.ApplyURL
	}
	out.Eligible = b.filter.Eligible(n)
	return out
}

// storedRawJob rebuilds the vendor job from the stored payload, falling back
// to the row's columns for anything the payload lacks.
func storedRawJob(rec model.JobRecord) model.RawJob {
	raw := rec.Raw
	if raw.ID == "" {
		raw.ID = rec.SourceID
	}
	if raw.Title == "" {
		raw.Title = orDefault(rec.Title, "Untitled")
	}
	if raw.Location == "" {
		raw.Location = rec.Location
	}
	if raw.ApplyURL == "" {
		raw.ApplyURL = rec.ApplyURL
	}
	if raw.PostedAt == "" {
		raw.PostedAt = rec.PostedAt
	}
	if raw.EmploymentType == "" {
		raw.EmploymentType = rec.EmploymentType
	}
	return raw
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
