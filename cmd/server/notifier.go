package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/notifier"
)

// logNotifier is the built-in notification transport: it logs each
// notification and reports success. Deployments that deliver to a real chat
// service replace it in newApplication with their own notifier.Notifier.
type logNotifier struct {
	logger *slog.Logger
}

var _ notifier.Notifier = (*logNotifier)(nil)

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// Send implements notifier.Notifier.
func (n *logNotifier) Send(
	_ context.Context,
	task *domain.Task,
	stage domain.Stage,
) (time.Time, error) {
	attrs := []any{
		slog.Int64("task_id", task.ID),
		slog.Int64("channel_id", task.ChannelID),
		slog.String("stage", string(stage.Kind)),
		slog.String("title", task.Title),
		slog.String("due_at", task.FormatDueAt(nil)),
	}
	if stage.Kind == domain.StagePreDueReminder {
		attrs = append(attrs, slog.Int("hours_before_due", stage.Hours))
	}
	if task.NotifyRoleID != nil {
		attrs = append(attrs, slog.Int64("notify_role_id", *task.NotifyRoleID))
	}

	n.logger.Info("notification", attrs...)
	return time.Now().UTC(), nil
}
