// Package diag records best-effort diagnostic entries for handled failures.
// Recording never blocks and never fails the caller.
package diag

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Source tells which path a failure entered the sink through.
type Source string

const (
	SourceTyped   Source = "typed"   // taxonomy error raised directly
	SourceHTTP    Source = "http"    // raw failed response, reclassified
	SourceUnknown Source = "unknown" // anything else
	SourcePanic   Source = "panic"
)

// Entry is one diagnostic record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
	Kind      string    `json:"kind,omitempty"`
	Status    int       `json:"status,omitempty"`
	Message   string    `json:"message"`
	Cause     string    `json:"cause,omitempty"`
	URL       string    `json:"url,omitempty"`
	Env       string    `json:"env,omitempty"`
	Stack     string    `json:"stack,omitempty"`
}

// NewEntry stamps a fresh id and timestamp.
func NewEntry(source Source, message string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		Message:   message,
	}
}

// Writer persists or forwards an entry.
type Writer interface {
	Write(ctx context.Context, e Entry) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, e Entry) error

func (f WriterFunc) Write(ctx context.Context, e Entry) error { return f(ctx, e) }
