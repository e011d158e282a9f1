package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	phenomDefaultBaseURL = "https://careers.adobe.com"
	phenomDefaultPageID  = "page15-ds"
	phenomDefaultCountry = "us"
	phenomDefaultLang    = "en_us"
	phenomPageSize       = 100
	phenomMaxPages       = 20
)

var (
	phenomCSRFRegex    = regexp.MustCompile(`(?i)"csrfToken"\s*:\s*"([^"]+)"`)
	phenomPageIDRegex  = regexp.MustCompile(`(?i)"pageId"\s*:\s*"([^"]+)"`)
	phenomRefNumRegex  = regexp.MustCompile(`(?i)"refNum"\s*:\s*"([^"]+)"`)
	phenomLocaleRegex  = regexp.MustCompile(`(?i)"locale"\s*:\s*"([^"]+)"`)
	phenomCountryRegex = regexp.MustCompile(`(?i)"country"\s*:\s*"([^"]+)"`)

	phenomList      = paths("/refineSearch/data/jobs")
	phenomTotalHits = paths("/refineSearch/totalHits", "/refineSearch/data/totalHits")
	phenomFields    = fieldTable{
		ID:             paths("/jobId", "/reqId", "/jobSeqNo", "/applyUrl", "/title"),
		Title:          paths("/title"),
		Description:    paths("/descriptionTeaser", "/ml_job_parser/descriptionTeaser"),
		ApplyURL:       paths("/applyUrl"),
		PostedAt:       paths("/postedDate", "/dateCreated"),
		EmploymentType: paths("/type", "/employmentType"),
		Department:     paths("/department"),
	}
)

// phenomSession is the tenant configuration scraped from the public search
// page. Every widgets query needs it.
type phenomSession struct {
	baseURL   string
	csrfToken string
	pageID    string
	country   string
	lang      string
	refNum    string
}

type phenomWidgetsRequest struct {
	Lang           string         `json:"lang"`
	DeviceType     string         `json:"deviceType"`
	Country        string         `json:"country"`
	PageName       string         `json:"pageName"`
	DDOKey         string         `json:"ddoKey"`
	SortBy         string         `json:"sortBy"`
	Subsearch      string         `json:"subsearch"`
	From           int            `json:"from"`
	Jobs           bool           `json:"jobs"`
	Counts         bool           `json:"counts"`
	AllFields      []string       `json:"all_fields"`
	Size           int            `json:"size"`
	ClearAll       bool           `json:"clearAll"`
	JDSource       string         `json:"jdsource"`
	IsSliderEnable bool           `json:"isSliderEnable"`
	PageID         string         `json:"pageId"`
	SiteType       string         `json:"siteType"`
	Keywords       string         `json:"keywords"`
	Global         bool           `json:"global"`
	SelectedFields map[string]any `json:"selected_fields"`
	LocationData   map[string]any `json:"locationData"`
	RefNum         string         `json:"refNum"`
}

// parsePhenomSlug reads "baseUrl|refNum" or a bare refNum.
func parsePhenomSlug(slug string) (baseURL, refNum string) {
	if !strings.Contains(slug, "|") {
		return phenomDefaultBaseURL, strings.TrimSpace(slug)
	}
	fields := slugFields(slug, 2)
	return strings.TrimRight(orDefault(fields[0], phenomDefaultBaseURL), "/"), fields[1]
}

// PhenomAdapter fetches jobs from a Phenom People career site.
type PhenomAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewPhenomAdapter creates a new Phenom adapter.
func NewPhenomAdapter(client *http.Client, logger *slog.Logger) *PhenomAdapter {
	return &PhenomAdapter{client: client, logger: orDiscard(logger)}
}

func (a *PhenomAdapter) Source() string { return "phenom" }

// FetchJobs scrapes the tenant session, then pages through the widgets API.
func (a *PhenomAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	baseURL, refNum := parsePhenomSlug(slug)

	session, err := a.acquireSession(ctx, baseURL, refNum)
	if err != nil {
		return c.result(), c.stop(err)
	}
	if session.refNum == "" {
		a.logger.Debug("phenom tenant has no refNum", "base_url", baseURL)
		return c.result(), nil
	}
	return a.query(ctx, c, session)
}

// acquireSession reads the CSRF token and tenant identifiers embedded in the
// search page. Values missing from the page fall back to defaults; refNum
// falls back to the slug.
func (a *PhenomAdapter) acquireSession(ctx context.Context, baseURL, refNum string) (phenomSession, error) {
	resp, err := getPage(ctx, a.client, baseURL+"/"+phenomDefaultCountry+"/en/search-results", nil, expectHTML)
	if err != nil {
		return phenomSession{}, err
	}
	page := string(resp.body)
	return phenomSession{
		baseURL:   baseURL,
		csrfToken: firstGroup(phenomCSRFRegex, page, ""),
		pageID:    firstGroup(phenomPageIDRegex, page, phenomDefaultPageID),
		country:   firstGroup(phenomCountryRegex, page, phenomDefaultCountry),
		lang:      strings.ToLower(firstGroup(phenomLocaleRegex, page, phenomDefaultLang)),
		refNum:    firstGroup(phenomRefNumRegex, page, refNum),
	}, nil
}

func (a *PhenomAdapter) query(ctx context.Context, c *collector, s phenomSession) (model.FetchResult, error) {
	header := http.Header{}
	if s.csrfToken != "" {
		header.Set("X-CSRF-TOKEN", s.csrfToken)
	}

	for page := 0; page < phenomMaxPages; page++ {
		from := page * phenomPageSize
		resp, err := postJSON(ctx, a.client, s.baseURL+"/widgets", header, phenomWidgetsRequest{
			Lang:           s.lang,
			DeviceType:     "desktop",
			Country:        s.country,
			PageName:       "search-results",
			DDOKey:         "refineSearch",
			From:           from,
			Jobs:           true,
			Counts:         true,
			AllFields:      []string{"remote", "country", "state", "city", "experienceLevel", "category", "profession", "employmentType", "jobLevel"},
			Size:           phenomPageSize,
			JDSource:       "facets",
			PageID:         s.pageID,
			SiteType:       "external",
			Global:         true,
			SelectedFields: map[string]any{},
			LocationData:   map[string]any{},
			RefNum:         s.refNum,
		})
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		added := 0
		for _, item := range phenomList.list(doc) {
			job := phenomFields.rawJob(item)
			job.Location = phenomLocation(item)
			job.ApplyURL = fillLocale(job.ApplyURL)
			if c.add(job) {
				added++
			}
		}
		total, _ := phenomTotalHits.number(doc)
		if added == 0 || (total > 0 && from+phenomPageSize >= total) {
			break
		}
	}
	return c.result(), nil
}

func phenomLocation(item any) string {
	m, _ := item.(map[string]any)
	str := func(k string) string { return scalar(m[k]) }
	switch {
	case str("cityStateCountry") != "":
		return str("cityStateCountry")
	case str("cityState") != "":
		return str("cityState")
	case str("location") != "":
		return str("location")
	case str("city") != "" && str("state") != "":
		return fmt.Sprintf("%s, %s", str("city"), str("state"))
	case str("city") != "" && str("country") != "":
		return fmt.Sprintf("%s, %s", str("city"), str("country"))
	default:
		return str("address")
	}
}

func firstGroup(re *regexp.Regexp, text, def string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return def
}
