package adapter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/jsonpointer"

	"github.com/amishk599/frontfeed/internal/model"
)

// candidates is an ordered list of JSON pointers into a vendor document. The
// first pointer that resolves to a non-null value wins.
type candidates []jsonpointer.Pointer

// paths compiles JSON pointers. Pointers are package constants, so a bad one
// is a programming error.
func paths(raw ...string) candidates {
	out := make(candidates, 0, len(raw))
	for _, r := range raw {
		p, err := jsonpointer.New(r)
		if err != nil {
			panic(fmt.Sprintf("adapter: invalid json pointer %q: %v", r, err))
		}
		out = append(out, p)
	}
	return out
}

// value returns the first non-null candidate.
func (c candidates) value(doc any) (any, bool) {
	for i := range c {
		v, _, err := c[i].Get(doc)
		if err != nil || v == nil {
			continue
		}
		return v, true
	}
	return nil, false
}

// str returns the first non-null candidate rendered as a string. Objects and
// arrays render as "".
func (c candidates) str(doc any) string {
	v, ok := c.value(doc)
	if !ok {
		return ""
	}
	return scalar(v)
}

// list returns the first non-null candidate if it is an array.
func (c candidates) list(doc any) []any {
	v, ok := c.value(doc)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	return items
}

// number returns the first non-null candidate as an int, accepting numeric
// strings.
func (c candidates) number(doc any) (int, bool) {
	v, ok := c.value(doc)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// fieldTable maps a vendor item onto RawJob fields. Vendors post-process the
// result for anything a pointer chain cannot express.
type fieldTable struct {
	ID             candidates
	Title          candidates
	Location       candidates
	Description    candidates
	ApplyURL       candidates
	PostedAt       candidates
	EmploymentType candidates
	SalaryText     candidates
	Department     candidates
}

func (t fieldTable) rawJob(item any) model.RawJob {
	job := model.RawJob{
		ID:             t.ID.str(item),
		Title:          t.Title.str(item),
		Location:       t.Location.str(item),
		Description:    t.Description.str(item),
		ApplyURL:       t.ApplyURL.str(item),
		PostedAt:       t.PostedAt.str(item),
		EmploymentType: t.EmploymentType.str(item),
		SalaryText:     t.SalaryText.str(item),
		Department:     t.Department.str(item),
	}
	if job.Title == "" {
		job.Title = "Untitled"
	}
	return job
}

// epochTime renders a numeric timestamp as RFC 3339. unit scales the raw
// value to milliseconds; a unit of 0 guesses seconds or milliseconds from
// magnitude. Non-numeric values pass through as strings.
func epochTime(v any, unit int64) string {
	n, ok := v.(json.Number)
	if !ok {
		return scalar(v)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	ms := int64(f)
	switch {
	case unit > 0:
		ms = int64(f * float64(unit))
	case f <= 1e12:
		ms = int64(f * 1000)
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
