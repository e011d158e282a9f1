package adapter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/amishk599/frontfeed/internal/model"
)

// collector accumulates the jobs of one fetch, dropping blank and repeated IDs.
type collector struct {
	source string
	slug   string
	logger *slog.Logger
	seen   map[string]struct{}
	jobs   []model.RawJob
}

func newCollector(source, slug string, logger *slog.Logger) *collector {
	return &collector{
		source: source,
		slug:   slug,
		logger: orDiscard(logger),
		seen:   make(map[string]struct{}),
	}
}

// add keeps job unless its ID is empty or was already collected.
func (c *collector) add(job model.RawJob) bool {
	if job.ID == "" {
		return false
	}
	if _, dup := c.seen[job.ID]; dup {
		return false
	}
	c.seen[job.ID] = struct{}{}
	c.jobs = append(c.jobs, job)
	return true
}

// addAll returns how many of jobs were new.
func (c *collector) addAll(jobs []model.RawJob) int {
	added := 0
	for _, j := range jobs {
		if c.add(j) {
			added++
		}
	}
	return added
}

func (c *collector) count() int {
	return len(c.jobs)
}

// stop turns a failed request into a pagination decision. Unusable pages end
// the fetch quietly. A transport failure also ends it quietly once something
// was collected; with nothing collected it is returned to the caller.
func (c *collector) stop(err error) error {
	var httpErr *model.HTTPError
	var pageErr *model.PageError
	switch {
	case errors.As(err, &httpErr):
		attrs := []any{"source", c.source, "slug", c.slug, "collected", len(c.jobs), "status", httpErr.StatusCode, "error", err}
		if httpErr.RetryAfter > 0 {
			attrs = append(attrs, "retry_after", httpErr.RetryAfter.String())
		}
		c.logger.Debug("vendor page dropped", attrs...)
		return nil
	case errors.As(err, &pageErr):
		c.logger.Debug("vendor page dropped", "source", c.source, "slug", c.slug, "collected", len(c.jobs), "error", err)
		return nil
	case len(c.jobs) > 0:
		c.logger.Warn("vendor fetch truncated", "source", c.source, "slug", c.slug, "collected", len(c.jobs), "error", err)
		return nil
	default:
		return fmt.Errorf("%s fetch for %s: %w", c.source, c.slug, err)
	}
}

func (c *collector) result() model.FetchResult {
	jobs := c.jobs
	if jobs == nil {
		jobs = []model.RawJob{}
	}
	return model.FetchResult{Source: c.source, Jobs: jobs}
}

func emptyResult(source string) model.FetchResult {
	return model.FetchResult{Source: source, Jobs: []model.RawJob{}}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
