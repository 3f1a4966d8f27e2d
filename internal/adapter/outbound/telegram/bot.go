package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotConfig holds what is needed to reach the Bot API.
type BotConfig struct {
	Token string
	// APIEndpoint overrides the Bot API URL format, e.g. for a local bot API
	// server. It must contain two %s verbs: token and method.
	APIEndpoint string
	Debug       bool
}

// NewBot connects to the Bot API and routes the library's own logging
// through slog.
func NewBot(cfg BotConfig, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := tgbotapi.SetLogger(&slogBotLogger{log: logger.With("component", "tgbotapi")}); err != nil {
		return nil, fmt.Errorf("setting bot logger: %w", err)
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return bot, nil
}

// slogBotLogger adapts slog.Logger to tgbotapi.BotLogger.
type slogBotLogger struct {
	log *slog.Logger
}

func (s *slogBotLogger) Println(v ...any) {
	s.log.Warn(fmt.Sprint(v...))
}

func (s *slogBotLogger) Printf(format string, v ...any) {
	s.log.Warn(fmt.Sprintf(format, v...))
}
