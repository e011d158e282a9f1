// Package eligibility decides which normalized jobs are worth keeping:
// front-end roles that are remote in the US or based in Texas.
package eligibility

import (
	"strings"

	"github.com/amishk599/frontfeed/internal/keywords"
	"github.com/amishk599/frontfeed/internal/model"
)

// FrontendFilter accepts front-end roles that are remote in the US or based
// in Texas. Matching is case-insensitive.
type FrontendFilter struct {
	words *keywords.Set
}

// New returns a FrontendFilter backed by words. A nil set uses
// keywords.Default().
func New(words *keywords.Set) *FrontendFilter {
	if words == nil {
		words = keywords.Default()
	}
	return &FrontendFilter{words: words}
}

// Eligible returns true when the job's work mode is one of the accepted
// modes and its title or raw description mentions a front-end keyword.
func (f *FrontendFilter) Eligible(job model.NormalizedJob) bool {
	if !AcceptedWorkMode(job.WorkMode) {
		return false
	}
	text := strings.ToLower(job.Title + " " + job.Raw.Description)
	return f.words.MatchFrontend(text)
}

// AcceptedWorkMode reports whether mode is anything other than "other".
func AcceptedWorkMode(mode model.WorkMode) bool {
	switch mode {
	case model.WorkModeRemoteUS, model.WorkModeRemoteTX, model.WorkModeOnsiteTX, model.WorkModeHybridTX:
		return true
	}
	return false
}
