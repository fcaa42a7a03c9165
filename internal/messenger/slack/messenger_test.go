package slack_test

import (
	"context"
	"errors"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/messenger"
	agroslack "github.com/gosuda/agrotrack/internal/messenger/slack"
)

// --- mock SlackAPI ---

type mockSlackAPI struct {
	postMsgChannel string
	postMsgTS      string
	postMsgErr     error
	postMsgOpts    []slacklib.MsgOption

	updateChannel string
	updateTS      string
	updateErr     error
}

func (m *mockSlackAPI) PostMessageContext(_ context.Context, channelID string, options ...slacklib.MsgOption) (ch, ts string, err error) {
	m.postMsgChannel = channelID
	m.postMsgOpts = options
	if m.postMsgErr != nil {
		return "", "", m.postMsgErr
	}
	return m.postMsgChannel, m.postMsgTS, nil
}

func (m *mockSlackAPI) UpdateMessageContext(_ context.Context, channelID, timestamp string, _ ...slacklib.MsgOption) (ch, ts, text string, err error) {
	m.updateChannel = channelID
	m.updateTS = timestamp
	if m.updateErr != nil {
		return "", "", "", m.updateErr
	}
	return channelID, timestamp, "", nil
}

// --- SlackMessenger tests ---

func TestSlackMessenger_UpdateMessage(t *testing.T) {
	t.Parallel()

	t.Run("passes channel and timestamp", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		api := &mockSlackAPI{}
		m := agroslack.NewSlackMessenger(api)

		err := m.UpdateMessage(ctx, "C123", messenger.MessageID("111.222"), "Listo.")

		require.NoError(t, err)
		assert.Equal(t, "C123", api.updateChannel)
		assert.Equal(t, "111.222", api.updateTS)
	})

	t.Run("api error is wrapped", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		api := &mockSlackAPI{updateErr: errors.New("message_not_found")}
		m := agroslack.NewSlackMessenger(api)

		err := m.UpdateMessage(ctx, "C123", "111.222", "x")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "slack.SlackMessenger.UpdateMessage")
	})
}

func TestSlackMessenger_SendNotification(t *testing.T) {
	t.Parallel()

	t.Run("posts text fallback and blocks", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		api := &mockSlackAPI{postMsgTS: "999.000"}
		m := agroslack.NewSlackMessenger(api)

		msgID, err := m.SendNotification(ctx, "C-ALERTS", messenger.Notice{
			Level: messenger.LevelWarning,
			Title: "Conflicto",
			Body:  "Ya existe un vendedor con el DNI 12345678",
		})

		require.NoError(t, err)
		assert.Equal(t, messenger.MessageID("999.000"), msgID)
		assert.Equal(t, "C-ALERTS", api.postMsgChannel)
		assert.Len(t, api.postMsgOpts, 2)
	})

	t.Run("api error is wrapped", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		api := &mockSlackAPI{postMsgErr: errors.New("rate_limited")}
		m := agroslack.NewSlackMessenger(api)

		_, err := m.SendNotification(ctx, "C1", messenger.Notice{Level: messenger.LevelError, Title: "Error"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "slack.SlackMessenger.SendNotification")
	})
}

func TestSlackMessenger_Platform(t *testing.T) {
	t.Parallel()

	m := agroslack.NewSlackMessenger(&mockSlackAPI{})
	assert.Equal(t, "slack", m.Platform())
}
