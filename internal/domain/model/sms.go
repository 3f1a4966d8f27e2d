package model

import (
	"fmt"
	"time"
)

// SMSMessage is an inbound text delivered by an SMS gateway callback.
type SMSMessage struct {
	ID         string    `json:"id"`
	Gateway    string    `json:"gateway"`
	From       string    `json:"from"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

func NewSMSMessage(gateway, from, text string, receivedAt time.Time) SMSMessage {
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	return SMSMessage{
		ID:         generateID(),
		Gateway:    gateway,
		From:       NormalizePhone(from),
		Text:       text,
		ReceivedAt: receivedAt.UTC(),
	}
}

// Summary renders the message for forwarding to a chat channel. guestName may
// be empty when the sender is not in the guest register.
func (m SMSMessage) Summary(guestName string) string {
	sender := m.From
	if guestName != "" {
		sender = fmt.Sprintf("%s (%s)", guestName, m.From)
	}
	return fmt.Sprintf("📩 SMS from %s at %s:\n%s", sender, m.ReceivedAt.Format("2006-01-02 15:04"), m.Text)
}
