// Package inspect fetches a single company's board and shows how every
// posting classifies, without touching the store.
package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/amishk599/frontfeed/internal/adapter"
	"github.com/amishk599/frontfeed/internal/model"
)

// Target identifies the board to inspect.
type Target struct {
	Company string
	ATSType string
	ATSSlug string
}

func (t Target) label() string {
	if t.Company != "" {
		return t.Company
	}
	return t.ATSType + ":" + t.ATSSlug
}

// Entry is one fetched posting with its classification.
type Entry struct {
	Raw      model.RawJob
	Job      model.NormalizedJob
	Eligible bool
}

// Report is the result of one inspection. Its JSON form is what
// `inspect --json` prints.
type Report struct {
	Company string         `json:"company"`
	ATSType string         `json:"atsType"`
	ATSSlug string         `json:"atsSlug"`
	Source  string         `json:"source"`
	Count   int            `json:"count"`
	Debug   *adapter.Trace `json:"debug,omitempty"`
	Jobs    []model.RawJob `json:"jobs"`

	Entries []Entry `json:"-"`
}

// Eligible returns the entries that pass the filter, in fetch order.
func (r *Report) Eligible() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Eligible {
			out = append(out, e)
		}
	}
	return out
}

// Fetcher dispatches an ATS type and slug to an adapter.
type Fetcher interface {
	Fetch(ctx context.Context, atsType, atsSlug string) (model.FetchResult, error)
	Supports(atsType string) bool
}

// Normalizer classifies a raw posting.
type Normalizer interface {
	Normalize(raw model.RawJob, source string) model.NormalizedJob
}

// Inspector runs one-company fetches for operators.
type Inspector struct {
	fetcher    Fetcher
	normalizer Normalizer
	filter     model.JobFilter
}

func New(fetcher Fetcher, normalizer Normalizer, filter model.JobFilter) *Inspector {
	return &Inspector{fetcher: fetcher, normalizer: normalizer, filter: filter}
}

var errMissingATS = errors.New("missing ats type or ats slug")

// Inspect fetches t and classifies every job. With debug set, the first
// vendor response is captured into Report.Debug.
func (in *Inspector) Inspect(ctx context.Context, t Target, debug bool) (*Report, error) {
	if t.ATSType == "" || t.ATSSlug == "" {
		return nil, fmt.Errorf("inspecting %s: %w", t.label(), errMissingATS)
	}
	if !in.fetcher.Supports(t.ATSType) {
		return nil, fmt.Errorf("inspecting %s: %w: %q", t.label(), model.ErrUnsupportedATS, t.ATSType)
	}

	var trace *adapter.Trace
	if debug {
		trace = &adapter.Trace{}
		ctx = adapter.WithTrace(ctx, trace)
	}

	result, err := in.fetcher.Fetch(ctx, t.ATSType, t.ATSSlug)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", t.label(), err)
	}

	r := &Report{
		Company: t.Company,
		ATSType: t.ATSType,
		ATSSlug: t.ATSSlug,
		Source:  result.Source,
		Count:   len(result.Jobs),
		Jobs:    result.Jobs,
	}
	if r.Jobs == nil {
		r.Jobs = []model.RawJob{}
	}
	if trace != nil && trace.Recorded() {
		r.Debug = trace
	}

	r.Entries = make([]Entry, 0, len(result.Jobs))
	for _, raw := range result.Jobs {
		job := in.normalizer.Normalize(raw, result.Source)
		r.Entries = append(r.Entries, Entry{Raw: raw, Job: job, Eligible: in.filter.Eligible(job)})
	}
	return r, nil
}
