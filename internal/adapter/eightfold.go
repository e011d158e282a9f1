package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	eightfoldDefaultHost   = "aexp.eightfold.ai"
	eightfoldDefaultDomain = "aexp.com"
)

var (
	eightfoldList     = paths("/positions", "/jobs", "/data/jobs", "/jobList", "/results", "/response/jobs")
	eightfoldPostedAt = paths("/postedDate", "/datePosted", "/createdDate", "/updatedDate", "/t_create", "/t_update")
	eightfoldFields   = fieldTable{
		ID:             paths("/id", "/jobId", "/reqId", "/requisitionId", "/jobRequisitionId", "/display_job_id", "/ats_job_id", "/title"),
		Title:          paths("/title", "/jobTitle", "/name"),
		Description:    paths("/job_description", "/description", "/jobDescription", "/summary"),
		ApplyURL:       paths("/canonicalPositionUrl", "/applyUrl", "/apply_url", "/jobUrl", "/job_url", "/detailUrl"),
		EmploymentType: paths("/employmentType", "/jobType", "/type"),
		Department:     paths("/department", "/category", "/business_unit"),
	}
)

type eightfoldBoard struct {
	host   string
	tenant string
	domain string
}

// parseEightfoldSlug accepts "tenant", "host|tenant" or "host|tenant|domain".
func parseEightfoldSlug(slug string) eightfoldBoard {
	parts := slugParts(slug)
	switch len(parts) {
	case 0:
		return eightfoldBoard{}
	case 1:
		return eightfoldBoard{host: eightfoldDefaultHost, tenant: parts[0], domain: eightfoldDefaultDomain}
	case 2:
		return eightfoldBoard{host: parts[0], tenant: parts[1], domain: eightfoldDefaultDomain}
	default:
		return eightfoldBoard{host: parts[0], tenant: parts[1], domain: parts[2]}
	}
}

// EightfoldAdapter reads an Eightfold tenant's apply API.
type EightfoldAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewEightfoldAdapter creates a new Eightfold adapter.
func NewEightfoldAdapter(client *http.Client, logger *slog.Logger) *EightfoldAdapter {
	return &EightfoldAdapter{client: client, logger: logger}
}

func (a *EightfoldAdapter) Source() string { return "eightfold" }

func (a *EightfoldAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	board := parseEightfoldSlug(slug)
	if board.tenant == "" {
		return c.result(), nil
	}

	base := "https://" + board.host
	endpoint := fmt.Sprintf("%s/api/apply/v2/jobs/%s/jobs?domain=%s", base, url.PathEscape(board.tenant), url.QueryEscape(board.domain))
	header := http.Header{}
	header.Set("Accept", "application/json, text/plain, */*")
	header.Set("Referer", base+"/careers")

	resp, err := getPage(ctx, a.client, endpoint, header, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range eightfoldList.list(doc) {
		job := eightfoldFields.rawJob(item)
		job.Location = eightfoldLocation(item)
		job.ApplyURL = absoluteURL(base, fillLocale(job.ApplyURL))
		if v, ok := eightfoldPostedAt.value(item); ok {
			job.PostedAt = epochTime(v, 1000)
		}
		c.add(job)
	}
	return c.result(), nil
}

func eightfoldLocation(item any) string {
	m, _ := item.(map[string]any)
	if s, ok := m["location"].(string); ok {
		return s
	}
	if locs, ok := m["locations"].([]any); ok && len(locs) > 0 {
		return scalar(locs[0])
	}
	if s, ok := m["primaryLocation"].(string); ok {
		return s
	}
	city, cityOK := m["city"].(string)
	state, stateOK := m["state"].(string)
	if cityOK && stateOK {
		return city + ", " + state
	}
	return scalar(m["country"])
}
