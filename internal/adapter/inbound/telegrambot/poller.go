package telegrambot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long-polling subset of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller pulls updates with getUpdates and hands each to the router.
type Poller struct {
	source  UpdateSource
	router  *Router
	timeout int
	logger  *slog.Logger
}

func NewPoller(source UpdateSource, router *Router, timeoutSeconds int, logger *slog.Logger) *Poller {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:  source,
		router:  router,
		timeout: timeoutSeconds,
		logger:  logger.With("component", "telegram-poller"),
	}
}

// Start polls until ctx is done, then waits for in-flight updates.
func (p *Poller) Start(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := p.source.GetUpdatesChan(cfg)

	p.logger.Info("telegram polling started")
	defer p.router.Wait()
	for {
		select {
		case <-ctx.Done():
			p.source.StopReceivingUpdates()
			p.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				p.logger.Info("updates channel closed")
				return nil
			}
			p.router.Go(ctx, update)
		}
	}
}
