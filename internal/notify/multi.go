package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Multi renders on a primary renderer and mirrors every notification to the
// remaining ones. Mirror failures are logged and never reach the caller.
type Multi struct {
	primary Renderer
	mirrors []Renderer
}

var _ Renderer = (*Multi)(nil)

// NewMulti creates a Multi renderer.
func NewMulti(primary Renderer, mirrors ...Renderer) *Multi {
	return &Multi{primary: primary, mirrors: mirrors}
}

// Render returns the primary renderer's result. Questions are not mirrored:
// only the primary can answer them.
func (m *Multi) Render(ctx context.Context, n Notification) (Result, error) {
	res, err := m.primary.Render(ctx, n)

	if n.Kind != KindQuestion {
		for _, mirror := range m.mirrors {
			if _, mErr := mirror.Render(ctx, n); mErr != nil && !errors.Is(mErr, ErrUnsupported) {
				log.Warn().Err(mErr).Str("kind", string(n.Kind)).Msg("notification mirror failed")
			}
		}
	}

	return res, err
}

// Close closes the primary and every mirror.
func (m *Multi) Close(ctx context.Context) error {
	err := m.primary.Close(ctx)
	for _, mirror := range m.mirrors {
		if mErr := mirror.Close(ctx); mErr != nil {
			log.Warn().Err(mErr).Msg("notification mirror close failed")
		}
	}
	return err
}
