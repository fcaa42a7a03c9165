// Package notify maps failures and direct calls to transient notifications and
// hands them to a Renderer, the only presentation boundary.
package notify

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// Kind selects how a notification is presented.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindWarning  Kind = "warning"
	KindInfo     Kind = "info"
	KindQuestion Kind = "question"
	KindLoading  Kind = "loading"
	KindToast    Kind = "toast"
)

// ErrUnsupported is returned by renderers that cannot present a kind, e.g. a
// chat channel asked to collect a confirmation.
var ErrUnsupported = errors.New("notify: presentation not supported by renderer") //nolint:gochecknoglobals // sentinel error

// FieldError holds the messages of one input field, in display order.
type FieldError struct {
	Field    string
	Messages []string
}

// Notification is an ephemeral description of what to show. It is built per
// call and never stored.
type Notification struct {
	Kind  Kind
	Title string
	Text  string

	// Fields is set for validation failures; Text then holds the bulleted form.
	Fields []FieldError

	// Level is the icon of a toast (success, error, warning or info).
	Level Kind

	// Timer auto-dismisses the notification; zero keeps it until dismissed.
	Timer        time.Duration
	PauseOnHover bool

	ShowConfirm bool
	ShowCancel  bool
	ConfirmText string
	CancelText  string

	// Dismissible is false for loading overlays, which only Close removes.
	Dismissible bool
}

// Result reports how the user left a notification.
type Result struct {
	Confirmed bool
	Dismissed bool // closed by timer or Close
}

// Renderer presents notifications. Render blocks while an awaitable
// notification (e.g. a confirm) is open.
type Renderer interface {
	Render(ctx context.Context, n Notification) (Result, error)
	// Close dismisses whatever is currently shown.
	Close(ctx context.Context) error
}

// SortedFields orders a field map by field name so rendering is stable.
func SortedFields(fields map[string][]string) []FieldError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FieldError, 0, len(names))
	for _, name := range names {
		out = append(out, FieldError{Field: name, Messages: append([]string(nil), fields[name]...)})
	}
	return out
}

// FormatFields renders one "• field: message" line per message.
func FormatFields(fields []FieldError) string {
	var sb strings.Builder
	for _, f := range fields {
		for _, msg := range f.Messages {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString("• ")
			sb.WriteString(f.Field)
			sb.WriteString(": ")
			sb.WriteString(msg)
		}
	}
	return sb.String()
}
