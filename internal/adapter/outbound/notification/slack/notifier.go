package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Channel  string
	// APIURL overrides the Slack API base URL; it must end with a slash.
	APIURL string
}

// Notifier mirrors notifications into a Slack channel.
type Notifier struct {
	client  *slackapi.Client
	channel string
}

var _ outbound.Notifier = (*Notifier)(nil)

func NewNotifier(cfg Config) *Notifier {
	var opts []slackapi.Option
	if cfg.APIURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client:  slackapi.New(cfg.BotToken, opts...),
		channel: cfg.Channel,
	}
}

// Notify posts a Block Kit card with a plain-text fallback.
func (n *Notifier) Notify(ctx context.Context, note outbound.Notification) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slackapi.MsgOptionBlocks(BuildNotificationBlocks(note)...),
		slackapi.MsgOptionText(fmt.Sprintf("%s %s", levelEmoji(note.Level), note.Title), false),
	)
	if err != nil {
		return fmt.Errorf("slack notify: %w", err)
	}
	return nil
}
