package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const accentureSearchURL = "https://www.accenture.com/api/accenture/elastic/findjobs"

var (
	accentureList   = paths("/jobs", "/jobList", "/jobSearchResult/jobs", "/result/jobs", "/hits/hits")
	// Elasticsearch hits wrap the posting in _source.
	accentureSource = paths("/_source")
	accentureFields = fieldTable{
		ID:             paths("/jobId", "/requisitionId", "/requisitionID", "/id", "/jobReqId", "/jobNumber"),
		Title:          paths("/jobTitle", "/title", "/jobName"),
		Location:       paths("/jobLocation", "/location", "/locationName", "/city"),
		Description:    paths("/jobDescription", "/description"),
		ApplyURL:       paths("/jobDetailUrl", "/applyUrl", "/jobUrl"),
		PostedAt:       paths("/postingDate", "/postedDate", "/datePosted"),
		EmploymentType: paths("/employmentType", "/jobType"),
		SalaryText:     paths("/salary", "/payRange"),
		Department:     paths("/jobCategory", "/department"),
	}
)

// accentureForm is the fixed search form; countrySite is filled per fetch.
var accentureForm = [][2]string{
	{"startIndex", "0"},
	{"maxResultSize", "100"},
	{"jobKeyword", ""},
	{"jobCountry", "USA"},
	{"jobLanguage", "en"},
	{"countrySite", ""},
	{"sortBy", "2"},
	{"searchType", "vectorSearch"},
	{"enableQueryBoost", "true"},
	{"minScore", "0.6"},
	{"getFeedbackJudgmentEnabled", "true"},
	{"useCleanEmbedding", "true"},
	{"score", "true"},
	{"totalHits", "true"},
	{"debugQuery", "false"},
	{"jobFilters", "[]"},
}

// AccentureAdapter queries Accenture's job search endpoint. The slug is the
// country site, e.g. "us-en".
type AccentureAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewAccentureAdapter creates a new Accenture adapter.
func NewAccentureAdapter(client *http.Client, logger *slog.Logger) *AccentureAdapter {
	return &AccentureAdapter{client: client, logger: logger}
}

func (a *AccentureAdapter) Source() string { return "accenture" }

// FetchJobs posts one multipart search for the first 100 results.
func (a *AccentureAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	site := orDefault(strings.TrimSpace(slug), "us-en")

	body, contentType, err := accentureBody(site)
	if err != nil {
		return c.result(), fmt.Errorf("accenture fetch for %s: %w", site, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, accentureSearchURL, body)
	if err != nil {
		return c.result(), fmt.Errorf("accenture fetch for %s: %w", site, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := send(a.client, req, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range accentureList.list(doc) {
		if src, ok := accentureSource.value(item); ok {
			item = src
		}
		job := accentureFields.rawJob(item)
		if job.ApplyURL == "" && job.ID != "" {
			job.ApplyURL = fmt.Sprintf("https://www.accenture.com/%s/careers/jobdetails?id=%s", site, url.QueryEscape(job.ID))
		}
		c.add(job)
	}
	return c.result(), nil
}

func accentureBody(site string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range accentureForm {
		v := kv[1]
		if kv[0] == "countrySite" {
			v = site
		}
		if err := w.WriteField(kv[0], v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
