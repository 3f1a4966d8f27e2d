package parser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/parser"
)

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGenericParser_CanParse(t *testing.T) {
	p := parser.NewGenericParser()

	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"text/plain", false},
		{"", false},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", nil)
		req.Header.Set("Content-Type", tc.contentType)
		if got := p.CanParse(req); got != tc.expected {
			t.Errorf("CanParse(%q) = %v, want %v", tc.contentType, got, tc.expected)
		}
	}
}

func TestGenericParser_Parse_Single(t *testing.T) {
	p := parser.NewGenericParser()
	msgs, err := p.Parse(context.Background(), jsonRequest(
		`{"from":"+1 (555) 000-1234","text":"Running late","timestamp":"2026-03-01T18:30:00Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Gateway != parser.GatewayGeneric {
		t.Errorf("gateway = %q", m.Gateway)
	}
	if m.From != "+15550001234" {
		t.Errorf("from = %q, want normalized number", m.From)
	}
	if m.Text != "Running late" {
		t.Errorf("text = %q", m.Text)
	}
	want := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	if !m.ReceivedAt.Equal(want) {
		t.Errorf("receivedAt = %v, want %v", m.ReceivedAt, want)
	}
}

func TestGenericParser_Parse_ArrayAndUnixTimestamps(t *testing.T) {
	p := parser.NewGenericParser()
	msgs, err := p.Parse(context.Background(), jsonRequest(
		`[{"from":"+15550001","text":"a","timestamp":1772389800},{"from":"+15550002","text":"b","timestamp":"1772389800"},{"from":"+15550003","text":"c"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	unix := time.Unix(1772389800, 0)
	if !msgs[0].ReceivedAt.Equal(unix) || !msgs[1].ReceivedAt.Equal(unix) {
		t.Errorf("unix timestamps not parsed: %v %v", msgs[0].ReceivedAt, msgs[1].ReceivedAt)
	}
	if msgs[2].ReceivedAt.IsZero() {
		t.Error("missing timestamp should default to now")
	}
}

func TestGenericParser_Parse_Errors(t *testing.T) {
	p := parser.NewGenericParser()
	bodies := map[string]string{
		"invalid json":      `{not json`,
		"missing from":      `{"text":"hello"}`,
		"bad timestamp":     `{"from":"+1555","timestamp":"yesterday"}`,
		"bad element":       `[{"from":"+1555"},{"text":"x"}]`,
		"wrong shape array": `[1,2]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Parse(context.Background(), jsonRequest(body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
