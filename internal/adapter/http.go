package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/frontfeed/internal/model"
)

// maxBodyBytes caps how much of a vendor response is read.
const maxBodyBytes = 16 << 20

// contentKind is the response type an adapter is prepared to parse.
type contentKind int

const (
	expectJSON contentKind = iota
	expectHTML
	expectAny
)

func (k contentKind) accepts(contentType string) bool {
	ct := strings.ToLower(contentType)
	switch k {
	case expectJSON:
		return strings.Contains(ct, "json")
	case expectHTML:
		return strings.Contains(ct, "text/html")
	default:
		return true
	}
}

// response is a vendor reply that passed status and content-type checks.
type response struct {
	url         string
	contentType string
	header      http.Header
	body        []byte
}

// decode unmarshals the body into v. Numbers decode as json.Number when v is
// an *any.
func (r *response) decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &model.PageError{URL: r.url, ContentType: r.contentType, Err: err}
	}
	return nil
}

// document decodes the body as a generic JSON value.
func (r *response) document() (any, error) {
	var doc any
	if err := r.decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// send performs req and validates the reply. Transport failures come back as
// plain errors; a non-2xx status is a *model.HTTPError and a content-type
// mismatch is a *model.PageError. Callers treat the last two as end-of-data.
func send(client *http.Client, req *http.Request, kind contentKind) (*response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	recordTrace(req.Context(), req.URL.String(), resp, body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL.Redacted(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Redacted(), resp.StatusCode),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !kind.accepts(contentType) {
		return nil, &model.PageError{
			URL:         req.URL.String(),
			ContentType: contentType,
			Err:         fmt.Errorf("unexpected content type"),
		}
	}

	return &response{
		url:         req.URL.String(),
		contentType: contentType,
		header:      resp.Header,
		body:        body,
	}, nil
}

func getPage(ctx context.Context, client *http.Client, rawURL string, header http.Header, kind contentKind) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	mergeHeader(req, header)
	return send(client, req, kind)
}

func postJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, payload any) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body for %s: %w", rawURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	mergeHeader(req, header)
	return send(client, req, expectJSON)
}

func postForm(ctx context.Context, client *http.Client, rawURL string, header http.Header, form url.Values, kind contentKind) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	mergeHeader(req, header)
	return send(client, req, kind)
}

func mergeHeader(req *http.Request, header http.Header) {
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
