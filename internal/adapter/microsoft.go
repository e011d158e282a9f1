package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	microsoftBaseURL       = "https://apply.careers.microsoft.com"
	microsoftDefaultDomain = "microsoft.com"
	microsoftQuery         = "frontend"
	microsoftLocation      = "Texas"
	microsoftMaxPages      = 10
)

var (
	microsoftList = paths(
		"/data/positions",
		"/operationResult/resultSet",
		"/operationResult/results",
		"/resultSet",
		"/results",
		"/items",
		"/jobs",
	)
	microsoftCount    = paths("/data/count", "/count")
	microsoftJobID    = paths("/jobId")
	microsoftPostedAt = paths("/postedDate", "/postedDateTime", "/datePosted", "/publishDate", "/postingDate", "/postedTs")
	microsoftFields   = fieldTable{
		ID:             paths("/jobId", "/jobID", "/requisitionId", "/requisitionID", "/id", "/jobPostingId", "/applyUrl", "/jobDetailUrl"),
		Title:          paths("/title", "/postingTitle", "/jobTitle", "/name", "/jobTitleText"),
		Location:       paths("/location", "/locations/0", "/locationName", "/primaryLocation", "/locationText"),
		Description:    paths("/description", "/jobDescription", "/summary"),
		ApplyURL:       paths("/applyUrl", "/jobDetailUrl", "/jobUrl", "/url", "/positionUrl"),
		EmploymentType: paths("/employmentType", "/timeType"),
		SalaryText:     paths("/salary", "/payRange", "/compensation"),
		Department:     paths("/category", "/function", "/department"),
	}
)

// MicrosoftAdapter searches Microsoft careers for front-end roles in Texas.
// The slug is the careers domain and defaults to microsoft.com.
type MicrosoftAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewMicrosoftAdapter creates a new Microsoft adapter.
func NewMicrosoftAdapter(client *http.Client, logger *slog.Logger) *MicrosoftAdapter {
	return &MicrosoftAdapter{client: client, logger: logger}
}

func (a *MicrosoftAdapter) Source() string { return "microsoft" }

// FetchJobs pages the search API by start offset until a page adds nothing,
// the reported count is reached, or the page cap is hit.
func (a *MicrosoftAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	domain := orDefault(strings.TrimSpace(slug), microsoftDefaultDomain)

	start := 0
	for page := 0; page < microsoftMaxPages; page++ {
		resp, err := getPage(ctx, a.client, microsoftSearchURL(domain, start), nil, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		items := microsoftList.list(doc)
		added := 0
		for _, item := range items {
			if c.add(microsoftJob(item)) {
				added++
			}
		}
		if added == 0 {
			break
		}
		start += len(items)
		if count, ok := microsoftCount.number(doc); ok && start >= count {
			break
		}
	}
	return c.result(), nil
}

func microsoftSearchURL(domain string, start int) string {
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("query", microsoftQuery)
	q.Set("location", microsoftLocation)
	q.Set("start", fmt.Sprint(start))
	q.Set("filter_include_remote", "1")
	return microsoftBaseURL + "/api/pcsx/search?" + q.Encode()
}

func microsoftJob(item any) model.RawJob {
	job := microsoftFields.rawJob(item)
	job.ApplyURL = fillLocale(absoluteURL(microsoftBaseURL, job.ApplyURL))
	if job.ApplyURL == "" {
		if id := microsoftJobID.str(item); id != "" {
			job.ApplyURL = "https://careers.microsoft.com/v2/global/en/job/" + id
		}
	}
	if v, ok := microsoftPostedAt.value(item); ok {
		job.PostedAt = epochTime(v, 0)
	}
	if job.Description != "" {
		job.Description = extractText(job.Description)
	}
	return job
}
