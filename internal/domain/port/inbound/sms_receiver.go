package inbound

import (
	"context"
	"net/http"

	"github.com/jonny/stayhub/internal/domain/model"
)

// SMSParser parses gateway-specific callback payloads into SMS messages.
type SMSParser interface {
	Gateway() string
	CanParse(r *http.Request) bool
	Parse(ctx context.Context, r *http.Request) ([]model.SMSMessage, error)
}

// SMSReceiverPort delivers parsed SMS messages to the domain.
type SMSReceiverPort interface {
	ReceiveSMS(ctx context.Context, msgs []model.SMSMessage) error
}
