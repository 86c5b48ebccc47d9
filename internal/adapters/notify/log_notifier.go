package notify

import (
	"context"
	"log/slog"

	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
)

// LogNotifier writes notifications to the structured log. It stands in for
// a mail or SMS gateway; swapping one in means implementing the same
// Notifier port.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs deliveries.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(ctx context.Context, notification portssvc.Notification) error {
	n.logger.InfoContext(ctx, "Notification dispatched",
		slog.String("recipient_id", notification.RecipientID),
		slog.String("subject", notification.Subject),
		slog.String("body", notification.Body),
	)
	return nil
}
