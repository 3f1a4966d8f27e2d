package inbound

import "context"

// ChatPort handles events from the chat platform. Replies are sent through
// the outbound ChatSender; the returned error only reports delivery failures.
type ChatPort interface {
	HandleMessage(ctx context.Context, evt MessageEvent) error
	HandleCallback(ctx context.Context, evt CallbackEvent) error
}

// MessageEvent is a direct message: free text or a /command.
type MessageEvent struct {
	SenderID int64
	ChatID   int64
	Text     string
}

// CallbackEvent is a button press on a previously sent prompt.
type CallbackEvent struct {
	CallbackID string
	SenderID   int64
	ChatID     int64
	Data       string
}
