package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/avradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes digests to the logger instead of a chat.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per job in rank order, then a summary line.
// Logging does not fail.
func (n *LogNotifier) Notify(_ context.Context, d model.Digest) error {
	for i, j := range d.Jobs {
		args := []any{
			"rank", i + 1,
			"score", j.Score,
			"source", j.Source,
			"title", j.Title,
			"company", j.Company,
			"location", j.Location,
		}
		if j.Salary != "" {
			args = append(args, "salary", j.Salary)
		}
		if j.URL != "" {
			args = append(args, "url", j.URL)
		}
		n.logger.Info("job", args...)
	}
	n.logger.Info("digest", "label", d.Label, "jobs", len(d.Jobs))
	return nil
}
