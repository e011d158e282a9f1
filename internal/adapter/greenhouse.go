package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/frontfeed/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

var (
	greenhouseList   = paths("/jobs")
	greenhouseFields = fieldTable{
		ID:          paths("/id", "/absolute_url", "/title"),
		Title:       paths("/title"),
		Location:    paths("/location/name"),
		Description: paths("/content"),
		ApplyURL:    paths("/absolute_url"),
		PostedAt:    paths("/updated_at", "/created_at"),
		Department:  paths("/departments/0/name"),
	}
)

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API. The
// slug is the board token.
type GreenhouseAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewGreenhouseAdapter creates a new Greenhouse adapter.
func NewGreenhouseAdapter(client *http.Client, logger *slog.Logger) *GreenhouseAdapter {
	return &GreenhouseAdapter{client: client, logger: logger}
}

func (a *GreenhouseAdapter) Source() string { return "greenhouse" }

// FetchJobs retrieves every job on the board, including its HTML content.
func (a *GreenhouseAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, url.PathEscape(slug))

	resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range greenhouseList.list(doc) {
		job := greenhouseFields.rawJob(item)
		job.Description = extractText(job.Description)
		c.add(job)
	}
	return c.result(), nil
}
