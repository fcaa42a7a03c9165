package diag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogWriter emits one structured log line per entry.
type LogWriter struct {
	logger zerolog.Logger
}

// NewLogWriter logs through logger.
func NewLogWriter(logger zerolog.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(_ context.Context, e Entry) error {
	ev := w.logger.Error()
	if e.Source == SourceTyped || e.Source == SourceHTTP {
		// Classified failures are expected outcomes, not defects.
		ev = w.logger.Warn()
	}

	ev = ev.
		Str("entry_id", e.ID).
		Time("timestamp", e.Timestamp).
		Str("source", string(e.Source))
	if e.Kind != "" {
		ev = ev.Str("kind", e.Kind)
	}
	if e.Status != 0 {
		ev = ev.Int("status", e.Status)
	}
	if e.Cause != "" {
		ev = ev.Str("cause", e.Cause)
	}
	if e.URL != "" {
		ev = ev.Str("url", e.URL)
	}
	if e.Stack != "" {
		ev = ev.Str("stack", e.Stack)
	}
	ev.Msg(e.Message)
	return nil
}

// Publisher is the subset of the Redis pub/sub store used for diagnostics.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v any) error
}

// PublishWriter forwards entries as JSON to a pub/sub channel.
type PublishWriter struct {
	pub     Publisher
	channel string
}

// NewPublishWriter publishes on channel.
func NewPublishWriter(pub Publisher, channel string) *PublishWriter {
	return &PublishWriter{pub: pub, channel: channel}
}

func (w *PublishWriter) Write(ctx context.Context, e Entry) error {
	if err := w.pub.PublishJSON(ctx, w.channel, e); err != nil {
		return fmt.Errorf("diag.PublishWriter.Write: %w", err)
	}
	return nil
}
