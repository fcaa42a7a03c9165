package notify

import (
	"errors"
	"fmt"
	"sort"
)

// ErrRendererNotFound is returned when a renderer name is not registered.
var ErrRendererNotFound = errors.New("notify: renderer not found") //nolint:gochecknoglobals // sentinel error

// Registry is a simple map-based set of named renderers.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer under the given name.
func (r *Registry) Register(name string, rd Renderer) {
	r.renderers[name] = rd
}

// Get returns the renderer for the given name, or false if not registered.
func (r *Registry) Get(name string) (Renderer, bool) {
	rd, ok := r.renderers[name]
	return rd, ok
}

// Names lists the registered renderer names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select builds the renderer for an ordered list of names: the first is the
// primary, the rest are best-effort mirrors.
func (r *Registry) Select(names []string) (Renderer, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("notify.Registry.Select: %w: empty selection", ErrRendererNotFound)
	}

	selected := make([]Renderer, 0, len(names))
	for _, name := range names {
		rd, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("notify.Registry.Select: %q: %w", name, ErrRendererNotFound)
		}
		selected = append(selected, rd)
	}

	if len(selected) == 1 {
		return selected[0], nil
	}
	return NewMulti(selected[0], selected[1:]...), nil
}
