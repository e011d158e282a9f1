package adapter

import (
	"context"
	"net/http"
	"sync"
)

const traceSnippetBytes = 600

// Trace captures the first vendor response of a fetch. It exists for operator
// debugging of a single company and is never consulted by ingestion.
type Trace struct {
	mu          sync.Mutex
	recorded    bool
	URL         string `json:"url"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Snippet     string `json:"snippet"`
}

// Recorded reports whether a response was captured.
func (t *Trace) Recorded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recorded
}

type traceKey struct{}

// WithTrace returns a context that makes adapters record their first response
// into t.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

func recordTrace(ctx context.Context, url string, resp *http.Response, body []byte) {
	t, ok := ctx.Value(traceKey{}).(*Trace)
	if !ok || t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recorded {
		return
	}
	snippet := body
	if len(snippet) > traceSnippetBytes {
		snippet = snippet[:traceSnippetBytes]
	}
	t.recorded = true
	t.URL = url
	t.Status = resp.StatusCode
	t.ContentType = resp.Header.Get("Content-Type")
	t.Snippet = string(snippet)
}
