package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const applePageOne = `<html><head>
<link rel="next" href="/en-us/search?location=united-states-USA&amp;page=2">
</head><body>
<td class="table-col-1"><a class="job-title job-list-item" href="#"></a>
  <a href="/en-us/details/200100-0836/web-engineer?team=SFTWR" class="table--advanced-search__title link-inline">Web &amp; UI Engineer</a>
  <span class="team-name mt-0">Software and Services</span>
  <span class="job-posted-date">Feb 10, 2026</span>
  <span class="table--advanced-search__location-sub">Austin</span>
</td>
<td class="table-col-1"><a class="job-title job-list-item" href="#"></a>
  <a href="/en-us/details/200100-0999/designer" class="link-inline">Designer</a>
</td>
</body></html>`

const applePageTwo = `<html><body>
<td><a class="job-title job-list-item" href="#"></a>
  <a href="/en-us/details/200100-0777/swe" class="link-inline">Software Engineer</a>
</td>
</body></html>`

func TestAppleFetchJobs_FollowsNextLink(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/en-us/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("location") != "united-states-USA" {
			t.Errorf("unexpected location %s", r.URL.Query().Get("location"))
		}
		if r.URL.Query().Get("page") == "2" {
			writeHTML(w, applePageTwo)
			return
		}
		writeHTML(w, applePageOne)
	}))
	defer srv.Close()

	result, err := NewAppleAdapter(newTestClient(srv), discardLogger()).FetchJobs(context.Background(), "en-us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", requests.Load())
	}
	if len(result.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(result.Jobs))
	}

	j := result.Jobs[0]
	if j.ID != "200100-0836" {
		t.Errorf("expected ID 200100-0836, got %s", j.ID)
	}
	if j.Title != "Web & UI Engineer" {
		t.Errorf("expected decoded title, got %q", j.Title)
	}
	if j.Description != "Software and Services" {
		t.Errorf("expected team as description, got %q", j.Description)
	}
	if j.PostedAt != "Feb 10, 2026" {
		t.Errorf("expected posted date, got %q", j.PostedAt)
	}
	if j.Location != "Austin" {
		t.Errorf("expected Austin, got %q", j.Location)
	}
	if j.ApplyURL != "https://jobs.apple.com/en-us/details/200100-0836/web-engineer?team=SFTWR" {
		t.Errorf("unexpected apply URL %s", j.ApplyURL)
	}
}

func TestAppleFetchJobs_RequiresHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{}`)
	}))
	defer srv.Close()

	result, err := NewAppleAdapter(newTestClient(srv), discardLogger()).FetchJobs(context.Background(), "en-us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(result.Jobs))
	}
}

func TestAppleNextURL(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"none", `<html></html>`, ""},
		{"relative", `<link rel="next" href="/en-us/search?page=2">`, "https://jobs.apple.com/en-us/search?page=2"},
		{"missing query mark", `<link rel="next" href="/en-us/searchlocation=usa&amp;page=3">`, "https://jobs.apple.com/en-us/search?location=usa&page=3"},
		{"ampersand after path", `<link rel="next" href="/en-us/search&amp;page=4">`, "https://jobs.apple.com/en-us/search?page=4"},
		{"absolute", `<link rel="next" href="https://jobs.apple.com/en-gb/search?page=2">`, "https://jobs.apple.com/en-gb/search?page=2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := appleNextURL(tc.markup); got != tc.want {
				t.Errorf("appleNextURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseAppleSlug(t *testing.T) {
	s := parseAppleSlug("en-gb|united-kingdom-GBR|3")
	if s.locale != "en-gb" || s.location != "united-kingdom-GBR" || s.maxPages != 3 {
		t.Errorf("unexpected search %+v", s)
	}
	s = parseAppleSlug("")
	if s.locale != appleDefaultLocale || s.maxPages != appleDefaultMaxPages {
		t.Errorf("expected defaults, got %+v", s)
	}
}
