package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

const atlassianDefaultURL = "https://www.atlassian.com/endpoint/careers/listings"

var (
	atlassianList   = paths("")
	atlassianFields = fieldTable{
		ID:          paths("/id", "/portalJobPost/id", "/applyUrl"),
		Title:       paths("/title"),
		Location:    paths("/locations/0"),
		Description: paths("/category"),
		ApplyURL:    paths("/applyUrl", "/portalJobPost/portalUrl"),
		PostedAt:    paths("/portalJobPost/updatedDate"),
	}
)

// AtlassianAdapter reads Atlassian's careers listings feed. The slug is the
// feed URL; an empty slug uses the public default.
type AtlassianAdapter struct {
	client *http.Client
	logger *slog.Logger
}

// NewAtlassianAdapter creates a new Atlassian adapter.
func NewAtlassianAdapter(client *http.Client, logger *slog.Logger) *AtlassianAdapter {
	return &AtlassianAdapter{client: client, logger: logger}
}

func (a *AtlassianAdapter) Source() string { return "atlassian" }

func (a *AtlassianAdapter) FetchJobs(ctx context.Context, slug string) (model.FetchResult, error) {
	c := newCollector(a.Source(), slug, a.logger)
	endpoint := orDefault(strings.TrimSpace(slug), atlassianDefaultURL)

	resp, err := getPage(ctx, a.client, endpoint, nil, expectJSON)
	if err != nil {
		return c.result(), c.stop(err)
	}
	doc, err := resp.document()
	if err != nil {
		return c.result(), c.stop(err)
	}

	for _, item := range atlassianList.list(doc) {
		c.add(atlassianFields.rawJob(item))
	}
	return c.result(), nil
}
