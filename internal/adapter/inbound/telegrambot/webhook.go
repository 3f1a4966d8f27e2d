package telegrambot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonny/stayhub/pkg/apierror"
)

// SecretTokenHeader carries the secret_token registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives updates pushed by the Bot API. Updates are
// acknowledged immediately and handled in the background under baseCtx, so
// Telegram does not redeliver while an action runs.
type WebhookHandler struct {
	router  *Router
	secret  string
	baseCtx context.Context
}

// NewWebhookHandler creates a handler. An empty secret disables the header
// check.
func NewWebhookHandler(baseCtx context.Context, router *Router, secret string) *WebhookHandler {
	return &WebhookHandler{router: router, secret: secret, baseCtx: baseCtx}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			apierror.Write(w, apierror.Unauthorized("invalid secret token"))
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		apierror.Write(w, apierror.BadRequest("invalid update payload"))
		return
	}

	h.router.Go(h.baseCtx, update)
	w.WriteHeader(http.StatusOK)
}
