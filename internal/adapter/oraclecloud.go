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
	oracleDefaultHost = "fa-extu-saasfaprod1.fa.ocs.oraclecloud.com"
	oraclePageSize    = 100
	oracleMaxPages    = 20
	oracleExpand      = "requisitionList.workLocation,requisitionList.otherWorkLocations,requisitionList.secondaryLocations,requisitionList.requisitionFlexFields"
	oracleFacets      = "LOCATIONS%3BWORK_LOCATIONS%3BWORKPLACE_TYPES%3BTITLES%3BCATEGORIES%3BORGANIZATIONS%3BPOSTING_DATES%3BFLEX_FIELDS"
)

var (
	oracleList   = paths("/items/0/requisitionList")
	oracleTotal  = paths("/items/0/TotalJobsCount", "/count")
	oracleFields = fieldTable{
		ID:             paths("/Id", "/RequisitionId", "/requisitionId"),
		Title:          paths("/Title", "/PostingTitle"),
		Location:       paths("/PrimaryLocation", "/PrimaryLocationCountry"),
		Description:    paths("/ShortDescriptionStr"),
		PostedAt:       paths("/PostedDate"),
		EmploymentType: paths("/JobType", "/JobSchedule"),
		Department:     paths("/Department", "/Organization"),
	}
)

type oracleSite struct {
	host        string
	siteNumber  string
	careersBase string
}

// parseOracleSlug accepts "siteNumber", "host|siteNumber" or
// "host|siteNumber|careersBaseUrl".
func parseOracleSlug(slug string) oracleSite {
	parts := slugParts(slug)
	switch len(parts) {
	case 0:
		return oracleSite{}
	case 1:
		return oracleSite{host: oracleDefaultHost, siteNumber: parts[0]}
	case 2:
		return oracleSite{host: bareHost(parts[0]), siteNumber: parts[1]}
	default:
		return oracleSite{host: bareHost(parts[0]), siteNumber: parts[1], careersBase: strings.TrimRight(parts[2], "/")}
	}
}

// applyURL needs the public careers site; without one postings have no link.
func (s oracleSite) applyURL(id string) string {
	if s.careersBase == "" || id == "" {
		return ""
	}
	return fillLocale(fmt.Sprintf("%s/en/sites/%s/job/%s", s.careersBase, s.siteNumber, id))
}

// OracleCloudAdapter pages through Oracle Recruiting Cloud's requisition
// finder.
type OracleCloudAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewOracleCloudAdapter creates a new Oracle Recruiting Cloud adapter.
func NewOracleCloudAdapter(client *http.Client, logger *slog.Logger) *OracleCloudAdapter {
	return &OracleCloudAdapter{client: client, logger: logger}
}

func (a *OracleCloudAdapter) Source() string { return "oraclecloud" }

func (a *OracleCloudAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	site := parseOracleSlug(slug)
	if site.siteNumber == "" {
		return c.result(), nil
	}

	baseURL := "https://" + site.host
	origin := orDefault(site.careersBase, baseURL)
	header := http.Header{}
	header.Set("Accept", "application/json, text/plain, */*")
	header.Set("Ora-Irc-Language", "en")
	header.Set("Origin", origin)
	header.Set("Referer", origin)

	for page := 0; page < oracleMaxPages; page++ {
		offset := page * oraclePageSize
		finder := fmt.Sprintf("findReqs;siteNumber=%s,facetsList=%s,limit=%d,offset=%d,sortBy=RELEVANCY",
			site.siteNumber, oracleFacets, oraclePageSize, offset)
		endpoint := fmt.Sprintf("%s/hcmRestApi/resources/latest/recruitingCEJobRequisitions?onlyData=true&expand=%s&finder=%s",
			baseURL, oracleExpand, finder)

		resp, err := getPage(ctx, a.client, endpoint, header, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		added := 0
		for _, item := range oracleList.list(doc) {
			job := oracleFields.rawJob(item)
			job.ApplyURL = site.applyURL(job.ID)
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if total, ok := oracleTotal.number(doc); ok && offset+oraclePageSize >= total {
			break
		}
	}
	return c.result(), nil
}
