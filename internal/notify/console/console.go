// Package console renders notifications on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gosuda/agrotrack/internal/notify"
)

var icons = map[notify.Kind]string{ //nolint:gochecknoglobals // lookup table
	notify.KindSuccess:  "✔",
	notify.KindError:    "✖",
	notify.KindWarning:  "⚠",
	notify.KindInfo:     "ℹ",
	notify.KindQuestion: "?",
	notify.KindLoading:  "…",
}

// Renderer writes notifications to out and reads confirmations from in.
type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	in      *bufio.Reader
	showing notify.Kind
}

var _ notify.Renderer = (*Renderer)(nil)

// New creates a console Renderer. in may be nil, in which case every
// confirmation is declined.
func New(out io.Writer, in io.Reader) *Renderer {
	r := &Renderer{out: out}
	if in != nil {
		r.in = bufio.NewReader(in)
	}
	return r
}

// Render prints the notification. Questions block until a line is read.
func (r *Renderer) Render(ctx context.Context, n notify.Notification) (notify.Result, error) {
	if err := ctx.Err(); err != nil {
		return notify.Result{}, fmt.Errorf("console.Renderer.Render: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.print(n); err != nil {
		return notify.Result{}, fmt.Errorf("console.Renderer.Render: %w", err)
	}
	r.showing = n.Kind

	if n.Kind != notify.KindQuestion {
		return notify.Result{Dismissed: n.Kind != notify.KindLoading}, nil
	}

	confirmed, err := r.ask(n)
	r.showing = ""
	if err != nil {
		return notify.Result{}, fmt.Errorf("console.Renderer.Render: %w", err)
	}
	return notify.Result{Confirmed: confirmed, Dismissed: !confirmed}, nil
}

// Close dismisses the current overlay.
func (r *Renderer) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.showing = ""
	return nil
}

// Showing reports the kind currently on screen, empty when nothing is.
func (r *Renderer) Showing() notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.showing
}

func (r *Renderer) print(n notify.Notification) error {
	icon := icons[n.Kind]
	if n.Kind == notify.KindToast {
		icon = icons[n.Level]
	}

	var sb strings.Builder
	if n.Title != "" {
		fmt.Fprintf(&sb, "%s %s\n", icon, n.Title)
		if n.Text != "" {
			sb.WriteString(indent(n.Text))
			sb.WriteByte('\n')
		}
	} else {
		fmt.Fprintf(&sb, "%s %s\n", icon, n.Text)
	}

	_, err := io.WriteString(r.out, sb.String())
	return err
}

func (r *Renderer) ask(n notify.Notification) (bool, error) {
	prompt := fmt.Sprintf("  [%s (s)", n.ConfirmText)
	if n.ShowCancel {
		prompt += fmt.Sprintf(" / %s (n)", n.CancelText)
	}
	prompt += "]: "
	if _, err := io.WriteString(r.out, prompt); err != nil {
		return false, err
	}

	if r.in == nil {
		_, err := io.WriteString(r.out, "\n")
		return false, err
	}

	line, err := r.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if !n.ShowCancel {
		return true, nil
	}
	switch answer {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}
