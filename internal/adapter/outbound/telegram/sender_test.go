package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

type fakeBotAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	err      error
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, f.err
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: f.err == nil}, f.err
}

func TestSender_SendText(t *testing.T) {
	api := &fakeBotAPI{}
	s := NewSender(api, nil)

	if err := s.SendText(context.Background(), 1000, "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", api.sent[0])
	}
	if msg.ChatID != 1000 || msg.Text != "hello" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.ReplyMarkup != nil {
		t.Error("plain text must not carry a keyboard")
	}
}

func TestSender_SendButtons(t *testing.T) {
	api := &fakeBotAPI{}
	s := NewSender(api, nil)

	err := s.SendButtons(context.Background(), 1000, "Confirm?", []outbound.Button{
		{Label: "✅ Confirm", Data: "confirm:abc"},
		{Label: "❌ Cancel", Data: "cancel:abc"},
	})
	if err != nil {
		t.Fatalf("SendButtons: %v", err)
	}

	msg := api.sent[0].(tgbotapi.MessageConfig)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", msg.ReplyMarkup)
	}
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected one row of two buttons, got %+v", markup.InlineKeyboard)
	}
	confirm := markup.InlineKeyboard[0][0]
	if confirm.Text != "✅ Confirm" || confirm.CallbackData == nil || *confirm.CallbackData != "confirm:abc" {
		t.Errorf("unexpected confirm button %+v", confirm)
	}
	if cancel := markup.InlineKeyboard[0][1]; *cancel.CallbackData != "cancel:abc" {
		t.Errorf("unexpected cancel payload %q", *cancel.CallbackData)
	}
}

func TestSender_AnswerCallback(t *testing.T) {
	api := &fakeBotAPI{}
	s := NewSender(api, nil)

	if err := s.AnswerCallback(context.Background(), "cb-1", ""); err != nil {
		t.Fatalf("AnswerCallback: %v", err)
	}
	cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
	if !ok || cb.CallbackQueryID != "cb-1" {
		t.Errorf("unexpected request %+v", api.requests[0])
	}
}

func TestSender_Errors(t *testing.T) {
	api := &fakeBotAPI{err: errors.New("Bad Request: chat not found")}
	s := NewSender(api, nil)

	if err := s.SendText(context.Background(), 1, "x"); err == nil {
		t.Error("expected send error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := len(api.sent)
	if err := s.SendText(ctx, 1, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(api.sent) != before {
		t.Error("nothing should be sent after cancellation")
	}
}

func TestNotifier(t *testing.T) {
	api := &fakeBotAPI{}
	n := NewNotifier(NewSender(api, nil), 555)

	err := n.Notify(context.Background(), outbound.Notification{
		Title: "Action shutdown_server executed",
		Body:  "Server prod shutdown executed.",
		Level: outbound.NotificationSuccess,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	msg := api.sent[0].(tgbotapi.MessageConfig)
	if msg.ChatID != 555 {
		t.Errorf("ChatID = %d", msg.ChatID)
	}
	want := "✅ Action shutdown_server executed\nServer prod shutdown executed."
	if msg.Text != want {
		t.Errorf("Text = %q, want %q", msg.Text, want)
	}
}

func TestFormatNotification_Levels(t *testing.T) {
	tests := map[outbound.NotificationLevel]string{
		outbound.NotificationInfo:    "ℹ️ t",
		outbound.NotificationWarning: "⚠️ t",
		outbound.NotificationFailure: "❌ t",
		"":                           "ℹ️ t",
	}
	for level, want := range tests {
		if got := FormatNotification(outbound.Notification{Title: "t", Level: level}); got != want {
			t.Errorf("level %q: got %q, want %q", level, got, want)
		}
	}
}
