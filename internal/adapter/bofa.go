package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	bofaDefaultBaseURL  = "https://careers.bankofamerica.com"
	bofaDefaultPageSize = 50
	bofaDefaultMaxPages = 30
)

var (
	bofaList        = paths("/jobsList", "/joblist")
	bofaTotal       = paths("/totalMatches")
	bofaExternalURL = paths("/externalUrl")
	bofaJCRURL      = paths("/jcrURL")
	bofaFields      = fieldTable{
		ID:             paths("/jobRequisitionId", "/jcrURL", "/postingTitle"),
		Title:          paths("/postingTitle"),
		Description:    paths("/jobDescriptionExternal", "/jobDescriptionInternal", "/additionalJobDescription"),
		PostedAt:       paths("/postedDate", "/indexedDate"),
		EmploymentType: paths("/job_type_text", "/job_type"),
		Department:     paths("/lob", "/area", "/family"),
	}
)

type bofaSite struct {
	baseURL  string
	pageSize int
	maxPages int
}

// parseBofaSlug reads "baseUrl|pageSize|maxPages".
func parseBofaSlug(slug string) bofaSite {
	parts := slugParts(slug)
	return bofaSite{
		baseURL:  strings.TrimRight(orDefault(at(parts, 0), bofaDefaultBaseURL), "/"),
		pageSize: positiveInt(at(parts, 1), bofaDefaultPageSize),
		maxPages: positiveInt(at(parts, 2), bofaDefaultMaxPages),
	}
}

// BofaAdapter pages through Bank of America's job search servlet.
type BofaAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewBofaAdapter creates a new Bank of America adapter.
func NewBofaAdapter(client *http.Client, logger *slog.Logger) *BofaAdapter {
	return &BofaAdapter{client: client, logger: logger}
}

func (a *BofaAdapter) Source() string { return "bofa" }

func (a *BofaAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	site := parseBofaSlug(slug)

	total := 0
	for page := 0; page < site.maxPages; page++ {
		start := page * site.pageSize
		// rows is the end index, not a count.
		endpoint := fmt.Sprintf("%s/services/jobssearchservlet?start=%d&rows=%d&search=getAllJobs", site.baseURL, start, start+site.pageSize)
		resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		if n, ok := bofaTotal.number(doc); ok && n > 0 {
			total = n
		}
		added := 0
		for _, item := range bofaList.list(doc) {
			job := bofaFields.rawJob(item)
			job.Location = bofaLocation(item)
			job.ApplyURL = bofaExternalURL.str(item)
			if job.ApplyURL == "" {
				if path := bofaJCRURL.str(item); path != "" {
					job.ApplyURL = site.baseURL + path
				}
			}
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if total > 0 && start+site.pageSize >= total {
			break
		}
	}
	return c.result(), nil
}

func bofaLocation(item any) string {
	m, _ := item.(map[string]any)
	str := func(k string) string { return scalar(m[k]) }
	switch {
	case str("location") != "":
		return str("location")
	case str("primaryLocation") != "":
		return str("primaryLocation")
	case str("city") != "" && str("state") != "":
		return str("city") + ", " + str("state")
	case str("city") != "" && str("country") != "":
		return str("city") + ", " + str("country")
	default:
		return str("locationString")
	}
}
