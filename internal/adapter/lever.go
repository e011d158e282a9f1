package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/frontfeed/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

var (
	leverList      = paths("")
	leverCreatedAt = paths("/createdAt")
	leverFields    = fieldTable{
		ID:             paths("/id", "/_id", "/hostedUrl", "/text"),
		Title:          paths("/text", "/title"),
		Location:       paths("/categories/location", "/location"),
		Description:    paths("/descriptionPlain", "/description"),
		ApplyURL:       paths("/hostedUrl", "/applyUrl", "/url"),
		EmploymentType: paths("/categories/commitment"),
		SalaryText:     paths("/salaryDescriptionPlain"),
		Department:     paths("/categories/team"),
	}
)

// LeverAdapter fetches jobs from the Lever public postings API. The slug is
// the company's Lever handle.
type LeverAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewLeverAdapter creates a new Lever adapter.
func NewLeverAdapter(client *http.Client, logger *slog.Logger) *LeverAdapter {
	return &LeverAdapter{client: client, logger: logger}
}

func (a *LeverAdapter) Source() string { return "lever" }

// FetchJobs retrieves all postings in one request. createdAt is epoch
// milliseconds and is rendered as RFC 3339.
func (a *LeverAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, url.PathEscape(slug))

	resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range leverList.list(doc) {
		job := leverFields.rawJob(item)
		if v, ok := leverCreatedAt.value(item); ok {
			job.PostedAt = epochTime(v, 1)
		}
		c.add(job)
	}
	return c.result(), nil
}
