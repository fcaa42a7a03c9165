package messenger

import "context"

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// Level is the severity a notice is shown with.
type Level string

const (
	LevelSuccess  Level = "success"
	LevelError    Level = "error"
	LevelWarning  Level = "warning"
	LevelInfo     Level = "info"
	LevelQuestion Level = "question"
	LevelLoading  Level = "loading"
)

// Field groups the messages attached to one input field.
type Field struct {
	Name     string
	Messages []string
}

// Notice is a structured notification posted to a chat channel.
type Notice struct {
	Level  Level
	Title  string
	Body   string
	Fields []Field
}

// Messenger abstracts communication with a chat platform.
// Implementations handle platform-specific API calls; the interface is platform-agnostic.
type Messenger interface {
	// UpdateMessage edits an existing message in a channel.
	UpdateMessage(ctx context.Context, channelID string, messageID MessageID, text string) error

	// SendNotification posts a formatted notice to a channel.
	SendNotification(ctx context.Context, channelID string, notice Notice) (MessageID, error)

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
