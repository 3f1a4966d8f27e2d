package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// NoopNotifier logs notifications instead of sending them. Used when no
// operator channel is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

var _ outbound.Notifier = (*NoopNotifier)(nil)

func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) Notify(_ context.Context, note outbound.Notification) error {
	n.logger.Info("noop: notification",
		"title", note.Title,
		"level", note.Level,
		"body", note.Body,
	)
	return nil
}
