package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	workdayDefaultLimit    = 20
	workdayDefaultMaxPages = 10
	workdayCSRFCookie      = "CALYPSO_CSRF_TOKEN"
)

var (
	workdayList   = paths("/jobPostings")
	workdayTotal  = paths("/total")
	workdayPath   = paths("/externalPath")
	workdayFields = fieldTable{
		ID:       paths("/bulletFields/0", "/externalPath", "/title"),
		Title:    paths("/title"),
		Location: paths("/locationsText"),
		PostedAt: paths("/postedOn"),
	}
)

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type workdayBoard struct {
	host     string
	tenant   string
	site     string
	limit    int
	maxPages int
}

// parseWorkdaySlug reads "host|tenant|site|limit|maxPages".
func parseWorkdaySlug(slug string) workdayBoard {
	parts := slugParts(slug)
	return workdayBoard{
		host:     at(parts, 0),
		tenant:   at(parts, 1),
		site:     at(parts, 2),
		limit:    positiveInt(at(parts, 3), workdayDefaultLimit),
		maxPages: positiveInt(at(parts, 4), workdayDefaultMaxPages),
	}
}

func (b workdayBoard) valid() bool {
	return b.host != "" && b.tenant != "" && b.site != ""
}

func (b workdayBoard) applyURL(externalPath string) string {
	if externalPath == "" {
		return fmt.Sprintf("https://%s/%s", b.host, b.site)
	}
	if strings.HasPrefix(externalPath, "http") {
		return externalPath
	}
	return fmt.Sprintf("https://%s/%s%s", b.host, b.site, externalPath)
}

// workdaySession is what the bootstrap request yields: a cookie-carrying
// client and, when the tenant issues one, a CSRF token.
type workdaySession struct {
	client    *http.Client
	csrfToken string
}

// WorkdayAdapter fetches jobs from a Workday career site.
type WorkdayAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewWorkdayAdapter creates a new Workday adapter.
func NewWorkdayAdapter(client *http.Client, logger *slog.Logger) *WorkdayAdapter {
	return &WorkdayAdapter{client: client, logger: orDiscard(logger)}
}

func (a *WorkdayAdapter) Source() string { return "workday" }

// FetchJobs bootstraps a session on the public career page, then pages
// through POST /wday/cxs/{tenant}/{site}/jobs.
func (a *WorkdayAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	board := parseWorkdaySlug(slug)
	if !board.valid() {
		return emptyResult(a.Source()), nil
	}
	session := a.acquireSession(ctx, board)
	return a.query(ctx, slug, board, session)
}

// acquireSession loads the career page so the tenant can set its session
// and CSRF cookies. Failure is not fatal; many tenants need neither.
func (a *WorkdayAdapter) acquireSession(ctx context.Context, board workdayBoard) workdaySession {
	jar, _ := cookiejar.New(nil)
	client := *a.client
	client.Jar = jar
	session := workdaySession{client: &client}

	pageURL := fmt.Sprintf("https://%s/%s", board.host, board.site)
	if _, err := getPage(ctx, session.client, pageURL, nil, expectAny); err != nil {
		a.logger.Debug("workday session bootstrap failed", "host", board.host, "error", err)
		return session
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return session
	}
	for _, ck := range jar.Cookies(u) {
		if ck.Name == workdayCSRFCookie && ck.Value != "" {
			session.csrfToken = ck.Value
		}
	}
	return session
}

func (a *WorkdayAdapter) query(ctx context.Context, slug string, board workdayBoard, session workdaySession) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := fmt.Sprintf("https://%s/wday/cxs/%s/%s/jobs", board.host, board.tenant, board.site)
	header := http.Header{}
	header.Set("Accept", "application/json")
	if session.csrfToken != "" {
		header.Set("X-Calypso-Csrf-Token", session.csrfToken)
	}

	total := 0
	for page, offset := 0, 0; page < board.maxPages; page, offset = page+1, offset+board.limit {
		resp, err := postJSON(ctx, session.client, endpoint, header, workdayListingRequest{
			AppliedFacets: map[string]any{},
			Limit:         board.limit,
			Offset:        offset,
		})
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		if n, ok := workdayTotal.number(doc); ok && n > 0 {
			total = n
		}
		added := 0
		for _, item := range workdayList.list(doc) {
			job := workdayFields.rawJob(item)
			job.ApplyURL = board.applyURL(workdayPath.str(item))
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if total > 0 && offset+board.limit >= total {
			break
		}
	}
	return c.result(), nil
}
