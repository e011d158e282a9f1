package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/frontfeed/internal/model"
)

// Ensure LogNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each run via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyRun logs the run totals, then one line per failed company.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) NotifyRun(_ context.Context, s model.RunSummary) error {
	args := []any{
		"run_id", s.RunID,
		"status", string(s.Status),
		"companies", s.CompaniesProcessed,
		"fetched", s.JobsFetched,
		"found", s.JobsFound,
		"inserted", s.Inserted,
		"updated", s.Updated,
	}
	if s.Error != "" {
		args = append(args, "error", s.Error)
	}
	if s.Status == model.RunError {
		n.logger.Error("run summary", args...)
	} else {
		n.logger.Info("run summary", args...)
	}

	for _, ce := range s.CompanyErrors {
		n.logger.Warn("company failed", "run_id", s.RunID, "company", ce.Company, "source", ce.Source, "error", ce.Err)
	}
	return nil
}
