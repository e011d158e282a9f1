package normalize

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/frontfeed/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestWorkMode(t *testing.T) {
	n := New(nil)
	tests := []struct {
		location string
		want     model.WorkMode
	}{
		{"Remote - Texas", model.WorkModeRemoteTX},
		{"Remote, United States", model.WorkModeRemoteUS},
		{"Remote", model.WorkModeRemoteUS},
		{"Distributed - United States", model.WorkModeRemoteUS},
		{"Austin, TX (Hybrid)", model.WorkModeHybridTX},
		{"Dallas, TX", model.WorkModeOnsiteTX},
		{"Remote - Austin, TX", model.WorkModeOnsiteTX},
		{"Seattle, WA", model.WorkModeOther},
		{"", model.WorkModeOther},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := n.WorkMode(tt.location); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEmploymentType(t *testing.T) {
	tests := []struct {
		name        string
		vendorType  string
		description string
		want        string
	}{
		{"full time from type", "Full-time", "", "full-time"},
		{"part time from description", "", "This is a part-time role", "part-time"},
		{"contract beats full time", "Full-time", "6 month contract", "contract"},
		{"temporary", "", "temporary assignment", "contract"},
		{"intern", "Internship", "", "intern"},
		{"falls back to vendor string", "Permanent", "Great people", "Permanent"},
		{"absent", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmploymentType(tt.vendorType, tt.description); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInferLevel(t *testing.T) {
	tests := []struct {
		text string
		want model.Level
	}{
		{"Software Engineer Intern", model.LevelIntern},
		{"Jr. Web Developer", model.LevelJunior},
		{"Junior Frontend Engineer", model.LevelJunior},
		{"Entry Level UI Developer", model.LevelJunior},
		{"Intermediate Developer", model.LevelMid},
		{"Senior Frontend Engineer", model.LevelSenior},
		{"Sr. Engineer", model.LevelSenior},
		{"Staff Engineer", model.LevelStaff},
		{"Principal Engineer", model.LevelPrincipal},
		{"Tech Lead", model.LevelLead},
		{"Frontend Developer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := InferLevel(tt.text); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestInferLevel_PriorityOrder(t *testing.T) {
	// intern outranks senior even when both appear
	if got := InferLevel("Senior mentor for our intern program"); got != model.LevelIntern {
		t.Errorf("expected intern, got %q", got)
	}
}

func TestExtractPay(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantOK  bool
		wantMin int64
		wantMax int64
	}{
		{"k shorthand", "$80k-$100k", true, 80000, 100000},
		{"full numbers with to", "Pay: $90,000 to $120,000 per year", true, 90000, 120000},
		{"spaces and upper K", "$ 150K - $ 200K", true, 150000, 200000},
		{"three digits always scaled", "$800-$1000", true, 800000, 100000},
		{"no range", "competitive salary", false, 0, 0},
		{"single amount", "$120k", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pay, ok := ExtractPay(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if pay.Min != tt.wantMin || pay.Max != tt.wantMax {
				t.Errorf("expected %d-%d, got %d-%d", tt.wantMin, tt.wantMax, pay.Min, pay.Max)
			}
			if pay.Currency != "USD" {
				t.Errorf("expected USD, got %s", pay.Currency)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("  hello \n\t world ", 220); got != "hello world" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}

	long := strings.Repeat("word ", 100)
	got := Snippet(long, 220)
	if len([]rune(got)) != 220 {
		t.Errorf("expected 220 characters, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-5:])
	}

	exact := strings.Repeat("a", 220)
	if got := Snippet(exact, 220); got != exact {
		t.Error("expected text at the bound to be left untouched")
	}
}

func TestNormalize_MapsFields(t *testing.T) {
	n := New(nil, WithClock(fixedClock))
	raw := model.RawJob{
		ID:             "42",
		Title:          "Senior React Engineer",
		Location:       "Remote - United States",
		Description:    "Build UI. Salary $50k-$60k.",
		SalaryText:     "$100k-$120k",
		ApplyURL:       "https://example.com/42",
		PostedAt:       "2026-02-27T00:00:00Z",
		EmploymentType: "Full-time",
	}

	job := n.Normalize(raw, "greenhouse")

	if job.Source != "greenhouse" || job.SourceID != "42" {
		t.Errorf("unexpected key %s/%s", job.Source, job.SourceID)
	}
	if job.WorkMode != model.WorkModeRemoteUS {
		t.Errorf("expected remote_us, got %s", job.WorkMode)
	}
	if job.Level != model.LevelSenior {
		t.Errorf("expected senior, got %s", job.Level)
	}
	if job.EmploymentType != "full-time" {
		t.Errorf("expected full-time, got %s", job.EmploymentType)
	}
	if job.PayMin == nil || *job.PayMin != 100000 || job.PayMax == nil || *job.PayMax != 120000 {
		t.Errorf("expected salary text to win, got %v-%v", job.PayMin, job.PayMax)
	}
	if !job.FoundAt.Equal(fixedClock()) {
		t.Errorf("expected FoundAt from clock, got %v", job.FoundAt)
	}
	if job.Raw != raw {
		t.Error("expected raw job to be carried through")
	}
}

func TestNormalize_NoPayLeavesFieldsAbsent(t *testing.T) {
	job := New(nil).Normalize(model.RawJob{ID: "1", Title: "Engineer"}, "lever")
	if job.PayMin != nil || job.PayMax != nil || job.PayCurrency != "" {
		t.Errorf("expected no pay fields, got %v %v %q", job.PayMin, job.PayMax, job.PayCurrency)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(nil)
	raw := model.RawJob{
		ID:          "7",
		Title:       "Frontend Engineer",
		Location:    "Houston, TX",
		Description: "Vue and TypeScript. $120k - $140k",
	}

	a := n.Normalize(raw, "workday")
	b := n.Normalize(raw, "workday")
	a.FoundAt, b.FoundAt = time.Time{}, time.Time{}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical output, got\n%+v\n%+v", a, b)
	}
}
