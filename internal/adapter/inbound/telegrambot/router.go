// Package telegrambot feeds Telegram updates into the chat port, either from
// the Bot API webhook or by long polling.
package telegrambot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonny/stayhub/internal/domain/port/inbound"
)

const (
	callbackAnswerTimeout = 10 * time.Second
	dispatchTimeout       = 5 * time.Minute
)

// CallbackAnswerer dismisses the spinner on a pressed inline button.
type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Router converts updates into chat port events. Each update is handled on
// its own goroutine so a slow action never blocks other users' updates.
type Router struct {
	chat     inbound.ChatPort
	answerer CallbackAnswerer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewRouter(chat inbound.ChatPort, answerer CallbackAnswerer, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		chat:     chat,
		answerer: answerer,
		logger:   logger.With("component", "telegram-router"),
	}
}

// Go dispatches update in the background.
func (r *Router) Go(ctx context.Context, update tgbotapi.Update) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Dispatch(ctx, update)
	}()
}

// Wait blocks until every dispatched update has been handled.
func (r *Router) Wait() { r.wg.Wait() }

// Dispatch handles one update synchronously. Updates that are neither a
// user message nor a callback query are ignored.
func (r *Router) Dispatch(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		r.handleMessage(ctx, update.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	evt := inbound.MessageEvent{
		SenderID: msg.From.ID,
		ChatID:   msg.Chat.ID,
		Text:     text,
	}
	if err := r.chat.HandleMessage(ctx, evt); err != nil {
		r.logger.Error("handle message failed", "chatID", evt.ChatID, "sender", evt.SenderID, "error", err)
	}
}

func (r *Router) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// The spinner is dismissed whatever the outcome.
	defer r.answer(ctx, cq.ID)

	if cq.From == nil {
		return
	}
	evt := inbound.CallbackEvent{
		CallbackID: cq.ID,
		SenderID:   cq.From.ID,
		Data:       cq.Data,
	}
	if cq.Message != nil && cq.Message.Chat != nil {
		evt.ChatID = cq.Message.Chat.ID
	} else {
		evt.ChatID = cq.From.ID
	}
	if err := r.chat.HandleCallback(ctx, evt); err != nil {
		r.logger.Error("handle callback failed", "callbackID", cq.ID, "sender", evt.SenderID, "error", err)
	}
}

func (r *Router) answer(ctx context.Context, callbackID string) {
	if r.answerer == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), callbackAnswerTimeout)
	defer cancel()
	if err := r.answerer.AnswerCallback(actx, callbackID, ""); err != nil {
		r.logger.Warn("answer callback failed", "callbackID", callbackID, "error", err)
	}
}
