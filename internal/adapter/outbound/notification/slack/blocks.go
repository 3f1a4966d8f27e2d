package slack

import (
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// BuildNotificationBlocks renders a notification as a header section and,
// when there is a body, a divider and a body section.
func BuildNotificationBlocks(note outbound.Notification) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *%s*", levelEmoji(note.Level), note.Title), false, false),
		nil, nil,
	)
	if note.Body == "" {
		return []slackapi.Block{header}
	}
	body := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, note.Body, false, false),
		nil, nil,
	)
	return []slackapi.Block{header, slackapi.NewDividerBlock(), body}
}

func levelEmoji(level outbound.NotificationLevel) string {
	switch level {
	case outbound.NotificationSuccess:
		return ":white_check_mark:"
	case outbound.NotificationFailure:
		return ":x:"
	case outbound.NotificationWarning:
		return ":large_yellow_circle:"
	default:
		return ":information_source:"
	}
}
