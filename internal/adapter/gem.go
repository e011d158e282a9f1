package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/frontfeed/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

var (
	gemList        = paths("")
	gemHTMLContent = paths("/content")
	gemFields      = fieldTable{
		ID:             paths("/id", "/absolute_url"),
		Title:          paths("/title"),
		Location:       paths("/location/name"),
		Description:    paths("/content_plain"),
		ApplyURL:       paths("/absolute_url"),
		PostedAt:       paths("/first_published_at", "/updated_at"),
		EmploymentType: paths("/employment_type"),
		Department:     paths("/departments/0/name"),
	}
)

// GemAdapter fetches jobs from the Gem public job board API. The slug is the
// board token.
type GemAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewGemAdapter creates a new Gem adapter.
func NewGemAdapter(client *http.Client, logger *slog.Logger) *GemAdapter {
	return &GemAdapter{client: client, logger: logger}
}

func (a *GemAdapter) Source() string { return "gem" }

// FetchJobs retrieves all job posts. When a post has no plain-text body the
// HTML content is flattened instead.
func (a *GemAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, url.PathEscape(slug))

	resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range gemList.list(doc) {
		job := gemFields.rawJob(item)
		if job.Description == "" {
			job.Description = extractText(gemHTMLContent.str(item))
		}
		c.add(job)
	}
	return c.result(), nil
}
