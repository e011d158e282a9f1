package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/frontfeed/internal/model"
)

const (
	jobSynSearchURL     = "https://prod-search-api.jobsyn.org/api/v1/solr/search"
	jobSynDefaultOrigin = "careers.alaskaair.com"
	jobSynPageSize      = 100
	jobSynMaxPages      = 20
)

var (
	jobSynFeatured   = paths("/featured_jobs")
	jobSynJobs       = paths("/jobs")
	jobSynTotalPages = paths("/pagination/total_pages")
	jobSynFields     = fieldTable{
		ID:             paths("/guid", "/id", "/reqid", "/title_exact", "/title_slug"),
		Title:          paths("/title_exact", "/title", "/job_title", "/title_slug"),
		Location:       paths("/location_exact", "/city_exact", "/location", "/all_locations/0"),
		Description:    paths("/description"),
		ApplyURL:       paths("/apply_url", "/job_url", "/url", "/detail_url"),
		PostedAt:       paths("/date_updated", "/date_added", "/date_new"),
		EmploymentType: paths("/job_type"),
		Department:     paths("/company_exact", "/department"),
	}
)

// JobSynAdapter pages through the DirectEmployers (jobsyn) search API. The
// slug is the career site origin host.
type JobSynAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewJobSynAdapter creates a new jobsyn adapter.
func NewJobSynAdapter(client *http.Client, logger *slog.Logger) *JobSynAdapter {
	return &JobSynAdapter{client: client, logger: logger}
}

func (a *JobSynAdapter) Source() string { return "jobsyn" }

func (a *JobSynAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	origin := orDefault(bareHost(slug), jobSynDefaultOrigin)

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-Origin", origin)
	header.Set("Origin", "https://"+origin)
	header.Set("Referer", "https://"+origin+"/")

	for page := 1; page <= jobSynMaxPages; page++ {
		endpoint := fmt.Sprintf("%s?page=%d&num_items=%d", jobSynSearchURL, page, jobSynPageSize)
		resp, err := getPage(ctx, a.client, endpoint, header, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		batch := append(jobSynFeatured.list(doc), jobSynJobs.list(doc)...)
		added := 0
		for _, item := range batch {
			job := jobSynFields.rawJob(item)
			if job.ApplyURL == "" {
				job.ApplyURL = fmt.Sprintf("https://%s/jobs/", origin)
			}
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		if totalPages, ok := jobSynTotalPages.number(doc); ok && totalPages > 0 && page >= totalPages {
			break
		}
	}
	return c.result(), nil
}
