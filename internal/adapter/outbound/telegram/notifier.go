package telegram

import (
	"context"
	"fmt"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Notifier posts notifications to a fixed operator chat.
type Notifier struct {
	sender outbound.ChatSender
	chatID int64
}

var _ outbound.Notifier = (*Notifier)(nil)

func NewNotifier(sender outbound.ChatSender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

func (n *Notifier) Notify(ctx context.Context, note outbound.Notification) error {
	if err := n.sender.SendText(ctx, n.chatID, FormatNotification(note)); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}

// FormatNotification renders a notification as plain text.
func FormatNotification(note outbound.Notification) string {
	text := levelEmoji(note.Level) + " " + note.Title
	if note.Body != "" {
		text += "\n" + note.Body
	}
	return text
}

func levelEmoji(level outbound.NotificationLevel) string {
	switch level {
	case outbound.NotificationSuccess:
		return "✅"
	case outbound.NotificationFailure:
		return "❌"
	case outbound.NotificationWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
