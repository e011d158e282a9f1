package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRunInProgress is returned when another process holds the run lock.
	ErrRunInProgress = errors.New("an ingestion run is already in progress")

	// ErrCompanyNotFound is returned when a named company is not configured.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrUnsupportedATS is returned when no adapter handles an ATS type.
	ErrUnsupportedATS = errors.New("unsupported ATS type")
)

// HTTPError is a non-2xx vendor response. Adapters use it to log why a page
// was dropped; it never escapes an adapter fetch.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// PageError describes a vendor response that could not be used: wrong
// content type or an undecodable body.
type PageError struct {
	URL         string
	ContentType string
	Err         error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("unusable page %s (content-type %q): %v", e.URL, e.ContentType, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
