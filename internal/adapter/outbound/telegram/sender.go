package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// botAPI is the subset of *tgbotapi.BotAPI used for outbound calls.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender implements outbound.ChatSender over the Bot API.
type Sender struct {
	api    botAPI
	logger *slog.Logger
}

var _ outbound.ChatSender = (*Sender)(nil)

func NewSender(api botAPI, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{api: api, logger: logger.With("component", "telegram-sender")}
}

// SendText sends a plain text message. The library call is not
// context-aware, so ctx is only checked before sending.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// SendButtons sends text with one row of inline buttons.
func (s *Sender) SendButtons(ctx context.Context, chatID int64, text string, buttons []outbound.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(row) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending telegram prompt: %w", err)
	}
	return nil
}

// AnswerCallback dismisses the loading state of a pressed inline button.
func (s *Sender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answering callback %s: %w", callbackID, err)
	}
	return nil
}
