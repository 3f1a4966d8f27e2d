package webhook_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jonny/stayhub/internal/adapter/inbound/webhook"
	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/parser"
	"github.com/jonny/stayhub/internal/domain/model"
)

// fakeReceiver records received messages for assertion in tests.
type fakeReceiver struct {
	mu   sync.Mutex
	msgs []model.SMSMessage
	err  error
}

func (f *fakeReceiver) ReceiveSMS(ctx context.Context, msgs []model.SMSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeReceiver) received() []model.SMSMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SMSMessage, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func buildRegistry() *parser.Registry {
	reg := parser.NewRegistry()
	reg.Register(parser.NewAndroidParser())
	reg.Register(parser.NewGenericParser())
	return reg
}

func newTestServer(receiver *fakeReceiver, auth func(http.Handler) http.Handler, telegram http.Handler) http.Handler {
	srv := webhook.NewServer(webhook.ServerConfig{RateLimitPerMinute: 600}, webhook.Routes{
		SMS:      webhook.NewSMSHandler(buildRegistry(), receiver, nil),
		SMSAuth:  auth,
		Telegram: telegram,
	}, nil)
	return srv.SetupRoutes()
}

func post(h http.Handler, path, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSMS_AndroidGateway(t *testing.T) {
	receiver := &fakeReceiver{}
	h := newTestServer(receiver, nil, nil)

	body := `{"event":"sms:received","payload":{"phoneNumber":"+15550001234","message":"Arriving at 9","receivedAt":"2026-03-01T12:00:00Z"}}`
	rec := post(h, "/webhooks/sms", "application/json", body, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["accepted"] != 1 {
		t.Errorf("accepted = %d", resp["accepted"])
	}
	got := receiver.received()
	if len(got) != 1 || got[0].Gateway != parser.GatewayAndroid || got[0].Text != "Arriving at 9" {
		t.Errorf("unexpected messages: %+v", got)
	}
}

func TestSMS_GenericGatewayBatch(t *testing.T) {
	receiver := &fakeReceiver{}
	h := newTestServer(receiver, nil, nil)

	rec := post(h, "/webhooks/sms", "application/json",
		`[{"from":"+15550001","text":"one"},{"from":"+15550002","text":"two"}]`, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := receiver.received(); len(got) != 2 || got[1].Gateway != parser.GatewayGeneric {
		t.Errorf("unexpected messages: %+v", got)
	}
}

func TestSMS_NonReceivedEventIsNoContent(t *testing.T) {
	receiver := &fakeReceiver{}
	h := newTestServer(receiver, nil, nil)

	rec := post(h, "/webhooks/sms", "application/json", `{"event":"sms:sent","payload":{}}`, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(receiver.received()) != 0 {
		t.Error("receiver should not be called")
	}
}

func TestSMS_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		recvErr     error
		want        int
	}{
		{"unsupported content type", "text/plain", "hello", nil, http.StatusBadRequest},
		{"malformed payload", "application/json", `{"text":"no sender"}`, nil, http.StatusBadRequest},
		{"receiver failure", "application/json", `{"from":"+1555","text":"x"}`, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fakeReceiver{err: tt.recvErr}, nil, nil)
			rec := post(h, "/webhooks/sms", tt.contentType, tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("error body content type = %q", ct)
			}
		})
	}
}

func TestSMS_HMACAuth(t *testing.T) {
	auth, err := webhook.AuthMiddleware(webhook.AuthHMAC, "gateway-secret")
	if err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	receiver := &fakeReceiver{}
	h := newTestServer(receiver, auth, nil)
	body := `{"from":"+15550001","text":"signed"}`

	rec := post(h, "/webhooks/sms", "application/json", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unsigned status = %d, want 401", rec.Code)
	}

	sig := hex.EncodeToString(middleware.Sign("gateway-secret", []byte(body)))
	rec = post(h, "/webhooks/sms", "application/json", body, map[string]string{middleware.SignatureHeader: "sha256=" + sig})
	if rec.Code != http.StatusAccepted {
		t.Errorf("signed status = %d, want 202", rec.Code)
	}
	if len(receiver.received()) != 1 {
		t.Error("signed message not delivered")
	}
}

func TestSMS_BearerAuth(t *testing.T) {
	auth, err := webhook.AuthMiddleware(webhook.AuthBearer, "tok")
	if err != nil {
		t.Fatalf("AuthMiddleware: %v", err)
	}
	h := newTestServer(&fakeReceiver{}, auth, nil)
	body := `{"from":"+15550001","text":"x"}`

	if rec := post(h, "/webhooks/sms", "application/json", body, map[string]string{"Authorization": "Bearer bad"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", rec.Code)
	}
	if rec := post(h, "/webhooks/sms", "application/json", body, map[string]string{"Authorization": "Bearer tok"}); rec.Code != http.StatusAccepted {
		t.Errorf("good token status = %d", rec.Code)
	}
}

func TestAuthMiddleware_Validation(t *testing.T) {
	if _, err := webhook.AuthMiddleware(webhook.AuthHMAC, ""); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := webhook.AuthMiddleware("basic", "x"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := webhook.AuthMiddleware("", ""); err != nil {
		t.Errorf("empty mode should mean none: %v", err)
	}
}

func TestServer_Routes(t *testing.T) {
	var telegramHits int
	telegram := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { telegramHits++ })
	h := newTestServer(&fakeReceiver{}, nil, telegram)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}

	post(h, "/webhooks/telegram", "application/json", `{}`, nil)
	if telegramHits != 1 {
		t.Errorf("telegram handler hits = %d", telegramHits)
	}

	req = httptest.NewRequest(http.MethodGet, "/webhooks/sms", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /webhooks/sms status = %d, want 405", rec.Code)
	}
}

func TestServer_OmitsUnconfiguredRoutes(t *testing.T) {
	h := webhook.NewServer(webhook.ServerConfig{}, webhook.Routes{}, nil).SetupRoutes()
	if rec := post(h, "/webhooks/telegram", "application/json", `{}`, nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
