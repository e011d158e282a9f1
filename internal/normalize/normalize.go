// Package normalize turns vendor RawJobs into classified NormalizedJobs.
// Normalization is pure apart from the injected clock used for FoundAt.
package normalize

import (
	"strings"
	"time"

	"github.com/amishk599/frontfeed/internal/keywords"
	"github.com/amishk599/frontfeed/internal/model"
)

// SnippetLimit bounds DescriptionSnippet, in characters.
const SnippetLimit = 220

// Normalizer classifies raw jobs against a keyword vocabulary.
type Normalizer struct {
	words *keywords.Set
	now   func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used to stamp FoundAt.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New returns a Normalizer backed by words. A nil set uses keywords.Default().
func New(words *keywords.Set, opts ...Option) *Normalizer {
	if words == nil {
		words = keywords.Default()
	}
	n := &Normalizer{
		words: words,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize classifies raw as a posting from source.
func (n *Normalizer) Normalize(raw model.RawJob, source string) model.NormalizedJob {
	job := model.NormalizedJob{
		Title:              raw.Title,
		Location:           raw.Location,
		WorkMode:           n.WorkMode(raw.Location),
		EmploymentType:     EmploymentType(raw.EmploymentType, raw.Description),
		Level:              InferLevel(raw.Title + " " + raw.Description),
		DescriptionSnippet: Snippet(raw.Description, SnippetLimit),
		PostedAt:           raw.PostedAt,
		FoundAt:            n.now(),
		ApplyURL:           raw.ApplyURL,
		Source:             source,
		SourceID:           raw.ID,
		Raw:                raw,
	}

	payText := raw.SalaryText
	if payText == "" {
		payText = raw.Description
	}
	if pay, ok := ExtractPay(payText); ok {
		job.PayMin = &pay.Min
		job.PayMax = &pay.Max
		job.PayCurrency = pay.Currency
	}
	return job
}

// WorkMode derives the work arrangement from a location string. Rules are
// checked in order and the first one that holds wins.
func (n *Normalizer) WorkMode(location string) model.WorkMode {
	text := strings.ToLower(location)
	remote := n.words.MatchRemote(text)
	texas := n.words.MatchTexas(text)

	switch {
	case remote && strings.Contains(text, "texas"):
		return model.WorkModeRemoteTX
	case remote && strings.Contains(text, "united states"):
		return model.WorkModeRemoteUS
	case remote && !texas:
		return model.WorkModeRemoteUS
	case texas && strings.Contains(text, "hybrid"):
		return model.WorkModeHybridTX
	case texas:
		return model.WorkModeOnsiteTX
	default:
		return model.WorkModeOther
	}
}

type rule[T any] struct {
	words []string
	value T
}

var employmentRules = []rule[string]{
	{[]string{"part-time", "part time"}, "part-time"},
	{[]string{"contract", "temporary", "temp"}, "contract"},
	{[]string{"intern"}, "intern"},
	{[]string{"full-time", "full time"}, "full-time"},
}

var levelRules = []rule[model.Level]{
	{[]string{"intern"}, model.LevelIntern},
	{[]string{"junior", "jr."}, model.LevelJunior},
	{[]string{"entry"}, model.LevelJunior},
	{[]string{"mid", "intermediate"}, model.LevelMid},
	{[]string{"senior", "sr."}, model.LevelSenior},
	{[]string{"staff"}, model.LevelStaff},
	{[]string{"principal"}, model.LevelPrincipal},
	{[]string{"lead"}, model.LevelLead},
}

func firstRule[T any](text string, rules []rule[T]) (T, bool) {
	for _, r := range rules {
		for _, w := range r.words {
			if strings.Contains(text, w) {
				return r.value, true
			}
		}
	}
	var zero T
	return zero, false
}

// EmploymentType scans the vendor type and description for a known
// arrangement and falls back to the vendor string.
func EmploymentType(vendorType, description string) string {
	text := strings.ToLower(vendorType + " " + description)
	if v, ok := firstRule(text, employmentRules); ok {
		return v
	}
	return vendorType
}

// InferLevel returns the first seniority keyword found in text, or "".
func InferLevel(text string) model.Level {
	lvl, _ := firstRule(strings.ToLower(text), levelRules)
	return lvl
}

// Snippet collapses whitespace and bounds text to max characters, replacing
// the tail with "..." when it had to cut.
func Snippet(text string, max int) string {
	clean := strings.Join(strings.Fields(text), " ")
	runes := []rune(clean)
	if len(runes) <= max {
		return clean
	}
	return string(runes[:max-3]) + "..."
}
