package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/frontfeed/internal/model"
)

// maxListedErrors caps how many failed companies a Slack message lists.
const maxListedErrors = 10

// Ensure SlackNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*SlackNotifier)(nil)

// SlackNotifier posts run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each run summary to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NotifyRun sends one Block Kit message for the run. A 429 is retried once
// after Retry-After.
func (s *SlackNotifier) NotifyRun(ctx context.Context, summary model.RunSummary) error {
	body, err := json.Marshal(buildPayload(summary))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(secs) * time.Second):
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack run summary sent", "run_id", summary.RunID, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack run summary sent", "run_id", summary.RunID)
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample run summary to verify the integration works.
func SendTestMessage(ctx context.Context, n model.RunNotifier) error {
	now := time.Now().UTC()
	return n.NotifyRun(ctx, model.RunSummary{
		RunID:              "test-run",
		Status:             model.RunSuccess,
		StartedAt:          now.Add(-42 * time.Second),
		FinishedAt:         now,
		CompaniesProcessed: 3,
		JobsFetched:        120,
		JobsFound:          4,
		Inserted:           2,
		Updated:            2,
	})
}

func statusEmoji(status model.RunStatus) string {
	switch status {
	case model.RunSuccess:
		return "✅"
	case model.RunError:
		return "❌"
	}
	return "⏳"
}

func buildPayload(s model.RunSummary) slackPayload {
	title := fmt.Sprintf("%s FrontFeed ingest %s", statusEmoji(s.Status), s.Status)

	duration := "unknown"
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		duration = s.FinishedAt.Sub(s.StartedAt).Round(time.Second).String()
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Companies:*\n" + strconv.Itoa(s.CompaniesProcessed)},
				{Type: "mrkdwn", Text: "*Eligible jobs:*\n" + strconv.Itoa(s.JobsFound)},
				{Type: "mrkdwn", Text: "*New / updated:*\n" + fmt.Sprintf("%d / %d", s.Inserted, s.Updated)},
				{Type: "mrkdwn", Text: "*Duration:*\n" + duration},
			},
		},
	}

	if s.Error != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Error:*\n```" + s.Error + "```"},
		})
	}

	if len(s.CompanyErrors) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "*Failed companies (%d):*", len(s.CompanyErrors))
		for i, ce := range s.CompanyErrors {
			if i == maxListedErrors {
				fmt.Fprintf(&b, "\n• and %d more", len(s.CompanyErrors)-maxListedErrors)
				break
			}
			fmt.Fprintf(&b, "\n• %s (%s): %s", ce.Company, ce.Source, ce.Err)
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: b.String()},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "Run `" + s.RunID + "`"}},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Text: title, Blocks: blocks}
}
