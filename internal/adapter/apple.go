package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	appleOrigin          = "https://jobs.apple.com"
	appleDefaultLocale   = "en-us"
	appleDefaultLocation = "united-states-USA"
	appleDefaultMaxPages = 25
	appleCardMarker      = "job-title job-list-item"
)

var (
	appleHrefRegex     = regexp.MustCompile(`(?i)href="(/[^"]*/details/[^"]+)"`)
	appleIDRegex       = regexp.MustCompile(`(?i)details/([^/]+)`)
	appleTitleRegex    = regexp.MustCompile(`(?is)<a[^>]*class="[^"]*link-inline[^"]*"[^>]*>(.*?)</a>`)
	appleTeamRegex     = regexp.MustCompile(`(?is)class="team-name[^"]*"[^>]*>(.*?)</span>`)
	appleDateRegex     = regexp.MustCompile(`(?is)class="job-posted-date"[^>]*>(.*?)</span>`)
	appleLocationRegex = regexp.MustCompile(`(?is)class="table--advanced-search__location-sub"[^>]*>(.*?)</span>`)
	appleNextRegex     = regexp.MustCompile(`(?i)rel="next" href="([^"]+)"`)
)

type appleSearch struct {
	locale   string
	location string
	maxPages int
}

// parseAppleSlug reads "locale|location|maxPages" or a bare locale.
func parseAppleSlug(slug string) appleSearch {
	if !strings.Contains(slug, "|") {
		return appleSearch{
			locale:   orDefault(strings.TrimSpace(slug), appleDefaultLocale),
			location: appleDefaultLocation,
			maxPages: appleDefaultMaxPages,
		}
	}
	fields := slugFields(slug, 3)
	return appleSearch{
		locale:   orDefault(at(fields, 0), appleDefaultLocale),
		location: orDefault(at(fields, 1), appleDefaultLocation),
		maxPages: positiveInt(at(fields, 2), appleDefaultMaxPages),
	}
}

func (s appleSearch) pageURL(page int) string {
	q := url.Values{}
	if s.location != "" {
		q.Set("location", s.location)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return appleOrigin + "/" + s.locale + "/search?" + q.Encode()
}

// AppleAdapter scrapes jobs.apple.com search result pages, following the
// rel="next" link.
type AppleAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewAppleAdapter creates a new Apple adapter.
func NewAppleAdapter(client *http.Client, logger *slog.Logger) *AppleAdapter {
	return &AppleAdapter{client: client, logger: logger}
}

func (a *AppleAdapter) Source() string { return "apple" }

func (a *AppleAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	search := parseAppleSlug(slug)

	next := search.pageURL(1)
	for page := 1; next != "" && page <= search.maxPages; page++ {
		resp, err := getPage(ctx, a.client, next, nil, expectHTML)
		if err != nil {
			return c.result(), c.stop(err)
		}
		markup := string(resp.body)
		if c.addAll(appleCards(markup)) == 0 {
			break
		}
		next = appleNextURL(markup)
	}
	return c.result(), nil
}

// appleCards parses the job cards of one results page.
func appleCards(markup string) []model.RawJob {
	chunks := strings.Split(markup, appleCardMarker)
	if len(chunks) < 2 {
		return nil
	}
	jobs := make([]model.RawJob, 0, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		href := firstGroup(appleHrefRegex, chunk, "")
		if href == "" {
			continue
		}
		id := orDefault(firstGroup(appleIDRegex, href, ""), href)
		jobs = append(jobs, model.RawJob{
			ID:          id,
			Title:       orDefault(scrapedText(firstGroup(appleTitleRegex, chunk, "")), "Untitled"),
			Location:    scrapedText(firstGroup(appleLocationRegex, chunk, "")),
			Description: scrapedText(firstGroup(appleTeamRegex, chunk, "")),
			ApplyURL:    appleOrigin + href,
			PostedAt:    scrapedText(firstGroup(appleDateRegex, chunk, "")),
		})
	}
	return jobs
}

// appleNextURL returns the absolute rel="next" target, repairing the two
// malformed query forms the site emits.
func appleNextURL(markup string) string {
	href := firstGroup(appleNextRegex, markup, "")
	if href == "" {
		return ""
	}
	href = decodeEntities(href)
	switch {
	case strings.Contains(href, "/searchlocation="):
		href = strings.Replace(href, "/searchlocation=", "/search?location=", 1)
	case strings.Contains(href, "/search&"):
		href = strings.Replace(href, "/search&", "/search?", 1)
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return appleOrigin + href
}
