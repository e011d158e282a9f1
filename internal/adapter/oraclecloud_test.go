package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestOracleCloudFetchJobs_TotalStop(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/hcmRestApi/resources/latest/recruitingCEJobRequisitions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.RawQuery, "siteNumber=CX_1") {
			t.Errorf("expected site number in finder, got %s", r.URL.RawQuery)
		}
		writeJSON(w, `{"items": [{"TotalJobsCount": 2, "requisitionList": [
			{"Id": "300", "Title": "Web Developer", "PrimaryLocation": "Austin, TX, United States", "PostedDate": "2026-02-01"},
			{"Id": "301", "Title": "DBA", "PrimaryLocationCountry": "US"}
		]}]}`)
	}))
	defer srv.Close()

	result, err := NewOracleCloudAdapter(newTestClient(srv), discardLogger()).FetchJobs(context.Background(), "abc.fa.oraclecloud.com|CX_1|https://careers.acme.com/{lang}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected 1 request, got %d", requests.Load())
	}
	if len(result.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Jobs))
	}
	if result.Jobs[0].ApplyURL != "https://careers.acme.com/en-us/en/sites/CX_1/job/300" {
		t.Errorf("unexpected apply URL %s", result.Jobs[0].ApplyURL)
	}
	if result.Jobs[1].Location != "US" {
		t.Errorf("expected country fallback, got %s", result.Jobs[1].Location)
	}
}

func TestOracleCloudFetchJobs_NoCareersBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"items": [{"TotalJobsCount": 1, "requisitionList": [{"Id": "1", "Title": "Engineer"}]}]}`)
	}))
	defer srv.Close()

	result, err := NewOracleCloudAdapter(newTestClient(srv), discardLogger()).FetchJobs(context.Background(), "CX_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Jobs) != 1 || result.Jobs[0].ApplyURL != "" {
		t.Errorf("expected one job without apply URL, got %+v", result.Jobs)
	}
}
