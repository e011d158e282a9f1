package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/amishk599/frontfeed/internal/model"
)

// Router dispatches a company's ATS type to the adapter registered for it.
type Router struct {
	adapters map[string]model.Adapter
	logger   *slog.Logger
}

// NewRouter registers every supported vendor adapter against client.
func NewRouter(client *http.Client, logger *slog.Logger) *Router {
	r := &Router{adapters: make(map[string]model.Adapter), logger: orDiscard(logger)}
	for _, a := range []model.Adapter{
		NewGreenhouseAdapter(client, logger),
		NewLeverAdapter(client, logger),
		NewAshbyAdapter(client, logger),
		NewGemAdapter(client, logger),
		NewWorkdayAdapter(client, logger),
		NewSmartRecruitersAdapter(client, logger),
		NewPhenomAdapter(client, logger),
		NewBaiduAdapter(client, logger),
		NewAtlassianAdapter(client, logger),
		NewRadancyAdapter(client, logger),
		NewSuccessFactorsAdapter(client, logger),
		NewMicrosoftAdapter(client, logger),
		NewOracleCloudAdapter(client, logger),
		NewPCSXAdapter(client, logger),
		NewJobSynAdapter(client, logger),
		NewEightfoldAdapter(client, logger),
		NewBofaAdapter(client, logger),
		NewAppleAdapter(client, logger),
		NewAccentureAdapter(client, logger),
	} {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Source().
func (r *Router) Register(a model.Adapter) {
	r.adapters[a.Source()] = a
}

// Fetch runs the adapter for atsType. Missing inputs and unsupported types
// yield an empty result rather than an error.
func (r *Router) Fetch(ctx context.Context, atsType, atsSlug string) (model.FetchResult, error) {
	atsType = strings.TrimSpace(atsType)
	if atsType == "" || strings.TrimSpace(atsSlug) == "" {
		return emptyResult("unknown"), nil
	}
	a, ok := r.adapters[atsType]
	if !ok {
		r.logger.Debug("no adapter for ats type", "ats_type", atsType)
		return emptyResult(atsType), nil
	}
	return a.FetchJobs(ctx, atsSlug)
}

// Supports reports whether atsType has a registered adapter.
func (r *Router) Supports(atsType string) bool {
	_, ok := r.adapters[atsType]
	return ok
}

// Sources lists the registered ATS types in sorted order.
func (r *Router) Sources() []string {
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
