package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/gosuda/agrotrack/internal/messenger"
)

const chatLoadingDone = "Listo."

// ChatRenderer posts notifications to a chat channel. It cannot collect
// answers, so questions return ErrUnsupported.
type ChatRenderer struct {
	messenger messenger.Messenger
	channelID string

	mu      sync.Mutex
	loading messenger.MessageID
}

var _ Renderer = (*ChatRenderer)(nil)

// NewChatRenderer creates a ChatRenderer posting to channelID.
func NewChatRenderer(m messenger.Messenger, channelID string) *ChatRenderer {
	return &ChatRenderer{messenger: m, channelID: channelID}
}

// Render posts the notification. Loading overlays are remembered so Close can
// mark them finished.
func (c *ChatRenderer) Render(ctx context.Context, n Notification) (Result, error) {
	if n.Kind == KindQuestion {
		return Result{}, ErrUnsupported
	}

	id, err := c.messenger.SendNotification(ctx, c.channelID, toNotice(n))
	if err != nil {
		return Result{}, fmt.Errorf("notify.ChatRenderer.Render: %s: %w", c.messenger.Platform(), err)
	}

	if n.Kind == KindLoading {
		c.mu.Lock()
		c.loading = id
		c.mu.Unlock()
	}

	return Result{Dismissed: true}, nil
}

// Close marks the pending loading message, if any, as finished.
func (c *ChatRenderer) Close(ctx context.Context) error {
	c.mu.Lock()
	id := c.loading
	c.loading = ""
	c.mu.Unlock()

	if id == "" {
		return nil
	}
	if err := c.messenger.UpdateMessage(ctx, c.channelID, id, chatLoadingDone); err != nil {
		return fmt.Errorf("notify.ChatRenderer.Close: %w", err)
	}
	return nil
}

func toNotice(n Notification) messenger.Notice {
	level := n.Kind
	if n.Kind == KindToast {
		level = n.Level
	}

	notice := messenger.Notice{
		Level: messenger.Level(level),
		Title: n.Title,
		Body:  n.Text,
	}
	if len(n.Fields) > 0 {
		// Fields are rendered natively; the bulleted text would duplicate them.
		notice.Body = ""
		notice.Fields = make([]messenger.Field, 0, len(n.Fields))
		for _, f := range n.Fields {
			notice.Fields = append(notice.Fields, messenger.Field{Name: f.Field, Messages: f.Messages})
		}
	}
	return notice
}
