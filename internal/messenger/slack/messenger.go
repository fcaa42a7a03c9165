package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/agrotrack/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slacklib.MsgOption) (string, string, string, error)
}

// SlackMessenger implements messenger.Messenger for Slack.
type SlackMessenger struct {
	api SlackAPI
}

// Compile-time interface check.
var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger with the given API client.
func NewSlackMessenger(api SlackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

// NewFromToken builds a SlackMessenger backed by the real Slack web API.
func NewFromToken(botToken string) *SlackMessenger {
	return NewSlackMessenger(slacklib.New(botToken))
}

// UpdateMessage edits an existing Slack message.
func (m *SlackMessenger) UpdateMessage(ctx context.Context, channelID string, messageID messenger.MessageID, text string) error {
	_, _, _, err := m.api.UpdateMessageContext(ctx, channelID, string(messageID), slacklib.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack.SlackMessenger.UpdateMessage: %w", err)
	}

	return nil
}

// SendNotification posts a notice rendered as Block Kit blocks, with a plain
// text fallback for notifications and old clients.
func (m *SlackMessenger) SendNotification(ctx context.Context, channelID string, notice messenger.Notice) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessageContext(ctx, channelID,
		slacklib.MsgOptionText(FallbackText(notice), false),
		slacklib.MsgOptionBlocks(BuildNoticeBlocks(notice)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendNotification: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// Platform returns the messenger platform identifier.
func (m *SlackMessenger) Platform() string {
	return "slack"
}
