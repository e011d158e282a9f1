package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/frontfeed/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

var (
	ashbyList     = paths("/jobs")
	ashbyIsListed = paths("/isListed")
	ashbyFields   = fieldTable{
		ID:             paths("/id", "/jobUrl", "/title"),
		Title:          paths("/title"),
		Location:       paths("/location"),
		Description:    paths("/descriptionPlain"),
		ApplyURL:       paths("/applyUrl", "/jobUrl"),
		PostedAt:       paths("/publishedAt"),
		EmploymentType: paths("/employmentType"),
		SalaryText:     paths("/compensation/compensationTierSummary"),
		Department:     paths("/department", "/team"),
	}
)

// AshbyAdapter fetches jobs from the Ashby public job board API. The slug is
// the job board name.
type AshbyAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewAshbyAdapter creates a new Ashby adapter.
func NewAshbyAdapter(client *http.Client, logger *slog.Logger) *AshbyAdapter {
	return &AshbyAdapter{client: client, logger: logger}
}

func (a *AshbyAdapter) Source() string { return "ashby" }

// FetchJobs retrieves every listed job on the board. Postings explicitly
// marked unlisted are skipped.
func (a *AshbyAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := fmt.Sprintf("%s/%s?includeCompensation=true", ashbyBaseURL, url.PathEscape(slug))

	resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range ashbyList.list(doc) {
		if listed, ok := ashbyIsListed.value(item); ok && listed == false {
			continue
		}
		c.add(ashbyFields.rawJob(item))
	}
	return c.result(), nil
}
