package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/stayhub/internal/domain/model"
)

const (
	// GatewayAndroid identifies the SMS Gateway for Android app.
	GatewayAndroid = "android"

	androidEventReceived = "sms:received"
)

type androidEnvelope struct {
	ID      string         `json:"id"`
	Event   string         `json:"event"`
	Payload androidPayload `json:"payload"`
}

type androidPayload struct {
	MessageID   string    `json:"messageId"`
	PhoneNumber string    `json:"phoneNumber"`
	Message     string    `json:"message"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// AndroidParser handles webhooks from the SMS Gateway for Android app. Only
// "sms:received" events are parsed; other events are accepted and dropped.
type AndroidParser struct{}

// NewAndroidParser creates a new AndroidParser.
func NewAndroidParser() *AndroidParser {
	return &AndroidParser{}
}

func (p *AndroidParser) Gateway() string { return GatewayAndroid }

// CanParse peeks at the buffered body for an "event" field in the sms:*
// namespace.
func (p *AndroidParser) CanParse(r *http.Request) bool {
	if !isJSON(r) {
		return false
	}
	body, ok := middleware.RawBody(r.Context())
	if !ok {
		return false
	}
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return strings.HasPrefix(probe.Event, "sms:")
}

func (p *AndroidParser) Parse(_ context.Context, r *http.Request) ([]model.SMSMessage, error) {
	var env androidEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("android: failed to decode JSON: %w", err)
	}
	if env.Event != androidEventReceived {
		return nil, nil
	}
	if env.Payload.PhoneNumber == "" {
		return nil, fmt.Errorf("android: missing required field 'payload.phoneNumber'")
	}
	return []model.SMSMessage{
		model.NewSMSMessage(GatewayAndroid, env.Payload.PhoneNumber, env.Payload.Message, env.Payload.ReceivedAt),
	}, nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
