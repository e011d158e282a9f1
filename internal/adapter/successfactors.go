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
	successFactorsDefaultHost = "jobs.aa.com"
	successFactorsMaxPages    = 20
)

var (
	successFactorsList     = paths("/jobSearchResult")
	successFactorsResponse = paths("/response")
	successFactorsURLTitle = paths("/unifiedUrlTitle", "/urlTitle")
	successFactorsFields   = fieldTable{
		ID:             paths("/id", "/jobId", "/requisitionId", "/jobReqId", "/reqId"),
		Title:          paths("/unifiedStandardTitle", "/jobTitle", "/title"),
		Location:       paths("/jobLocationShort/0", "/jobLocationShort"),
		Description:    paths("/jobDescription"),
		PostedAt:       paths("/unifiedStandardStart", "/postingStartDate"),
		EmploymentType: paths("/jobType"),
		Department:     paths("/department"),
	}
)

type successFactorsSearch struct {
	Locale         string         `json:"locale"`
	PageNumber     int            `json:"pageNumber"`
	SortBy         string         `json:"sortBy"`
	Keywords       string         `json:"keywords"`
	Location       string         `json:"location"`
	FacetFilters   map[string]any `json:"facetFilters"`
	Brand          string         `json:"brand"`
	Skills         []string       `json:"skills"`
	CategoryID     int            `json:"categoryId"`
	AlertID        string         `json:"alertId"`
	RCMCandidateID string         `json:"rcmCandidateId"`
}

// SuccessFactorsAdapter pages through an SAP SuccessFactors career site's
// recruiting API. The slug is the career site host.
type SuccessFactorsAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewSuccessFactorsAdapter creates a new SuccessFactors adapter.
func NewSuccessFactorsAdapter(client *http.Client, logger *slog.Logger) *SuccessFactorsAdapter {
	return &SuccessFactorsAdapter{client: client, logger: logger}
}

func (a *SuccessFactorsAdapter) Source() string { return "successfactors" }

func (a *SuccessFactorsAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	host := orDefault(bareHost(slug), successFactorsDefaultHost)
	endpoint := fmt.Sprintf("https://%s/services/recruiting/v1/jobs", host)

	header := http.Header{}
	header.Set("Accept", "application/json, text/plain, */*")
	header.Set("Origin", "https://"+host)
	header.Set("Referer", fmt.Sprintf("https://%s/search/", host))

	for page := 0; page < successFactorsMaxPages; page++ {
		resp, err := postJSON(ctx, a.client, endpoint, header, successFactorsSearch{
			Locale:       "en_US",
			PageNumber:   page,
			FacetFilters: map[string]any{},
			Skills:       []string{},
		})
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		added := 0
		for _, item := range successFactorsList.list(doc) {
			if inner, ok := successFactorsResponse.value(item); ok {
				item = inner
			}
			job := successFactorsFields.rawJob(item)
			job.ApplyURL = successFactorsApplyURL(host, successFactorsURLTitle.str(item), job.ID)
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
	}
	return c.result(), nil
}

func successFactorsApplyURL(host, urlTitle, id string) string {
	switch {
	case urlTitle != "" && id != "":
		return fmt.Sprintf("https://%s/job/%s/%s", host, url.PathEscape(urlTitle), id)
	case id != "":
		return fmt.Sprintf("https://%s/search/?q=%s", host, url.QueryEscape(id))
	default:
		return fmt.Sprintf("https://%s/search/", host)
	}
}
