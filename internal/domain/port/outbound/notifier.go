package outbound

import "context"

type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
	NotificationSuccess NotificationLevel = "success"
	NotificationFailure NotificationLevel = "failure"
)

// Button is an inline button with an opaque callback payload.
type Button struct {
	Label string
	Data  string
}

// ChatSender sends replies back to the chat platform.
type ChatSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, buttons []Button) error
}

type Notification struct {
	Title string
	Body  string
	Level NotificationLevel
}

// Notifier forwards human-readable summaries to operator channels.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
