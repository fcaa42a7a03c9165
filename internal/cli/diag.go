package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/agrotrack/internal/diag"
)

const tailBuffer = 64

func (a *App) diagTail(args []string) (action, error) {
	fs := a.flags("diag tail")
	limit := fs.Int("n", 0, "stop after this many entries; 0 follows until interrupted")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}
	if a.bus == nil {
		return nil, usagef("diagnostics bus not configured; set AGROTRACK_REDIS_ADDR")
	}

	return func(ctx context.Context) error {
		msgs, cancel, err := a.bus.Subscribe(ctx, a.channel, tailBuffer)
		if err != nil {
			return fmt.Errorf("cli.App.diagTail: %w", err)
		}
		defer cancel()

		seen := 0
		for {
			select {
			case <-ctx.Done():
				return nil
			case payload, ok := <-msgs:
				if !ok {
					return nil
				}
				if err := a.printEntry(payload); err != nil {
					return err
				}
				seen++
				if *limit > 0 && seen >= *limit {
					return nil
				}
			}
		}
	}, nil
}

func (a *App) printEntry(payload []byte) error {
	if a.json {
		_, err := fmt.Fprintln(a.stdout, string(payload))
		return err
	}

	var e diag.Entry
	if err := json.Unmarshal(payload, &e); err != nil {
		log.Warn().Err(err).Msg("skipping malformed diagnostic entry")
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %-7s", e.Timestamp.Local().Format(time.DateTime), e.Source)
	if e.Kind != "" {
		fmt.Fprintf(&sb, "  %s", e.Kind)
	}
	if e.Status != 0 {
		fmt.Fprintf(&sb, "  %d", e.Status)
	}
	fmt.Fprintf(&sb, "  %s", e.Message)
	if e.URL != "" {
		fmt.Fprintf(&sb, "  (%s)", e.URL)
	}
	if e.Env != "" {
		fmt.Fprintf(&sb, "  [%s]", e.Env)
	}
	_, err := fmt.Fprintln(a.stdout, sb.String())
	return err
}
