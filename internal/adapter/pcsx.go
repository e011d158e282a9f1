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
	pcsxDefaultHost     = "careers.appliedmaterials.com"
	pcsxDefaultDomain   = "appliedmaterials.com"
	pcsxDefaultMaxPages = 20
)

var (
	pcsxList     = paths("/data/positions")
	pcsxCount    = paths("/data/count")
	pcsxPostedAt = paths("/postedTs", "/creationTs")
	pcsxFields   = fieldTable{
		ID:             paths("/id", "/atsJobId", "/displayJobId", "/name"),
		Title:          paths("/name", "/title"),
		Location:       paths("/standardizedLocations/0", "/locations/0"),
		Description:    paths("/department"),
		ApplyURL:       paths("/positionUrl"),
		EmploymentType: paths("/workLocationOption"),
		Department:     paths("/department"),
	}
)

type pcsxSite struct {
	host     string
	domain   string
	maxPages int
}

// parsePCSXSlug reads "host|domain|maxPages".
func parsePCSXSlug(slug string) pcsxSite {
	parts := slugParts(slug)
	return pcsxSite{
		host:     orDefault(bareHost(at(parts, 0)), pcsxDefaultHost),
		domain:   orDefault(at(parts, 1), pcsxDefaultDomain),
		maxPages: positiveInt(at(parts, 2), pcsxDefaultMaxPages),
	}
}

// PCSXAdapter pages through an Eightfold PCSX career search (the API behind
// several hosted career sites).
type PCSXAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewPCSXAdapter creates a new PCSX adapter.
func NewPCSXAdapter(client *http.Client, logger *slog.Logger) *PCSXAdapter {
	return &PCSXAdapter{client: client, logger: logger}
}

func (a *PCSXAdapter) Source() string { return "pcsx" }

func (a *PCSXAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	site := parsePCSXSlug(slug)
	baseURL := "https://" + site.host

	start := 0
	for page := 0; page < site.maxPages; page++ {
		q := url.Values{}
		q.Set("domain", site.domain)
		q.Set("query", "")
		q.Set("location", "")
		q.Set("start", fmt.Sprint(start))

		resp, err := getPage(ctx, a.client, baseURL+"/api/pcsx/search?"+q.Encode(), nil, expectJSON)
		if err != nil {
			return c.result(), c.stop(err)
		}
		doc, err := resp.document()
		if err != nil {
			return c.result(), c.stop(err)
		}

		positions := pcsxList.list(doc)
		added := 0
		for _, item := range positions {
			job := pcsxFields.rawJob(item)
			job.ApplyURL = absoluteURL(baseURL, job.ApplyURL)
			if job.ApplyURL == "" {
				job.ApplyURL = baseURL
			}
			if v, ok := pcsxPostedAt.value(item); ok {
				job.PostedAt = epochTime(v, 0)
			}
			if c.add(job) {
				added++
			}
		}
		if added == 0 {
			break
		}
		start += len(positions)
		if count, ok := pcsxCount.number(doc); ok && start >= count {
			break
		}
	}
	return c.result(), nil
}
