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
	smartRecruitersBaseURL         = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersDefaultLimit    = 100
	smartRecruitersDefaultMaxPages = 20
)

var (
	smartRecruitersList         = paths("/content")
	smartRecruitersTotal        = paths("/totalFound")
	smartRecruitersPostingID    = paths("/id")
	smartRecruitersFullLocation = paths("/location/fullLocation")
	smartRecruitersLocationPart = []candidates{
		paths("/location/city"),
		paths("/location/region"),
		paths("/location/country"),
	}
	smartRecruitersFields = fieldTable{
		ID:             paths("/id", "/uuid", "/refNumber"),
		Title:          paths("/name"),
		Description:    paths("/department/label"),
		PostedAt:       paths("/releasedDate"),
		EmploymentType: paths("/typeOfEmployment/label"),
		Department:     paths("/department/label"),
	}
)

type smartRecruitersBoard struct {
	companyID string
	limit     int
	maxPages  int
}

// parseSmartRecruitersSlug reads "companyId|limit|maxPages".
func parseSmartRecruitersSlug(slug string) smartRecruitersBoard {
	parts := slugParts(slug)
	return smartRecruitersBoard{
		companyID: at(parts, 0),
		limit:     positiveInt(at(parts, 1), smartRecruitersDefaultLimit),
		maxPages:  positiveInt(at(parts, 2), smartRecruitersDefaultMaxPages),
	}
}

// SmartRecruitersAdapter pages through the SmartRecruiters postings API.
type SmartRecruitersAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewSmartRecruitersAdapter creates a new SmartRecruiters adapter.
func NewSmartRecruitersAdapter(client *http.Client, logger *slog.Logger) *SmartRecruitersAdapter {
	return &SmartRecruitersAdapter{client: client, logger: logger}
}

func (a *SmartRecruitersAdapter) Source() string { return "smartrecruiters" }

func (a *SmartRecruitersAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	board := parseSmartRecruitersSlug(slug)
	if board.companyID == "" {
		return c.result(), nil
	}

	total := -1
	for page, offset := 0, 0; page < board.maxPages; page, offset = page+1, offset+board.limit {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(board.limit))
		q.Set("offset", fmt.Sprint(offset))
		endpoint := fmt.Sprintf("%s/%s/postings?%s", smartRecruitersBaseURL, url.PathEscape(board.companyID), q.Encode())

		resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		if n, ok := smartRecruitersTotal.number(doc); ok {
			total = n
		}
		added := 0
		for _, item := range smartRecruitersList.list(doc) {
			job := smartRecruitersFields.rawJob(item)
			job.Location = smartRecruitersLocation(item)
			job.ApplyURL = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", board.companyID, smartRecruitersPostingID.str(item))
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if total >= 0 && offset+board.limit >= total {
			break
		}
	}
	return c.result(), nil
}

// smartRecruitersLocation prefers fullLocation, else joins city, region and
// country.
func smartRecruitersLocation(item any) string {
	if v, ok := smartRecruitersFullLocation.value(item); ok {
		if s, isString := v.(string); isString {
			return s
		}
	}
	var parts []string
	for _, p := range smartRecruitersLocationPart {
		if s := p.str(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
