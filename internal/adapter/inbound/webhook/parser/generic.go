package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonny/stayhub/internal/domain/model"
)

// GatewayGeneric identifies the fallback JSON format.
const GatewayGeneric = "generic"

type genericPayload struct {
	From      string          `json:"from"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// GenericParser is a fallback parser for gateways that can be configured to
// post {"from","text","timestamp"} objects, singly or as an array. It matches
// any request with a JSON content-type.
type GenericParser struct{}

// NewGenericParser creates a new GenericParser.
func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

func (g *GenericParser) Gateway() string { return GatewayGeneric }

func (g *GenericParser) CanParse(r *http.Request) bool {
	return isJSON(r)
}

func (g *GenericParser) Parse(_ context.Context, r *http.Request) ([]model.SMSMessage, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("generic: failed to read body: %w", err)
	}

	var payloads []genericPayload
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &payloads)
	} else {
		var single genericPayload
		err = json.Unmarshal(trimmed, &single)
		payloads = []genericPayload{single}
	}
	if err != nil {
		return nil, fmt.Errorf("generic: failed to decode JSON: %w", err)
	}

	msgs := make([]model.SMSMessage, 0, len(payloads))
	for i, p := range payloads {
		if p.From == "" {
			return nil, fmt.Errorf("generic: message %d: missing required field 'from'", i)
		}
		ts, err := parseTimestamp(p.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("generic: message %d: %w", i, err)
		}
		msgs = append(msgs, model.NewSMSMessage(GatewayGeneric, p.From, p.Text, ts))
	}
	return msgs, nil
}

// parseTimestamp accepts an RFC 3339 string or unix seconds, as a number or
// a numeric string. Absent values yield the zero time.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		raw = json.RawMessage(s)
	}

	secs, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", raw)
	}
	return time.Unix(secs, 0), nil
}
