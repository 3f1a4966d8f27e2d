package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/parser"
	"github.com/jonny/stayhub/internal/domain/port/inbound"
	"github.com/jonny/stayhub/pkg/apierror"
)

// Auth modes for the SMS callback endpoint.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthHMAC   = "hmac"
)

// SMSHandler receives SMS gateway callbacks.
type SMSHandler struct {
	registry *parser.Registry
	receiver inbound.SMSReceiverPort
	logger   *slog.Logger
}

// NewSMSHandler creates a new SMSHandler with the given registry and receiver.
func NewSMSHandler(registry *parser.Registry, receiver inbound.SMSReceiverPort, logger *slog.Logger) *SMSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSHandler{
		registry: registry,
		receiver: receiver,
		logger:   logger.With("component", "sms-webhook"),
	}
}

// ServeHTTP handles an incoming SMS callback:
// 1. Resolves the parser for the gateway payload.
// 2. Parses the payload into messages.
// 3. Hands the messages to the receiver.
func (h *SMSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Resolve(r)
	if err != nil {
		apierror.Write(w, apierror.BadRequest("unsupported sms gateway payload"))
		return
	}

	msgs, err := p.Parse(r.Context(), r)
	if err != nil {
		h.logger.Warn("sms payload rejected", "gateway", p.Gateway(), "error", err)
		apierror.Write(w, apierror.WithDetail(http.StatusBadRequest, "failed to parse sms payload", err.Error()))
		return
	}

	if len(msgs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.receiver.ReceiveSMS(r.Context(), msgs); err != nil {
		h.logger.Error("sms processing failed", "gateway", p.Gateway(), "count", len(msgs), "error", err)
		apierror.Write(w, apierror.Internal("failed to process sms"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]int{"accepted": len(msgs)})
}

// AuthMiddleware returns the middleware for the given auth mode. The none mode
// yields a pass-through.
func AuthMiddleware(mode, secret string) (func(http.Handler) http.Handler, error) {
	switch mode {
	case "", AuthNone:
		return func(next http.Handler) http.Handler { return next }, nil
	case AuthBearer, AuthHMAC:
		if secret == "" {
			return nil, errors.New("auth secret is required")
		}
		if mode == AuthBearer {
			return middleware.BearerAuth(secret), nil
		}
		return middleware.HMACAuth(secret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
