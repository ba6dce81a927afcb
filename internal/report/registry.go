package report

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roboco-io/docxinspect/internal/ooxml"
)

// Renderer turns a decoded record into text.
type Renderer interface {
	// Name returns the format identifier (e.g., "structured", "yaml").
	Name() string

	// Render formats v. Renderers accept analysis.TableAnalysis and
	// analysis.StyleRecord values; some accept more.
	Render(v any) (string, error)
}

// Registry manages renderers by format name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// NewDefaultRegistry creates a registry holding the built-in renderers.
// indent is used by the raw-markup renderer.
func NewDefaultRegistry(indent string) *Registry {
	r := NewRegistry()
	for _, rn := range []Renderer{
		StructuredRenderer{},
		YAMLRenderer{},
		MarkupRenderer{Indent: indent},
	} {
		// Built-in names are distinct, so Register cannot fail here.
		_ = r.Register(rn)
	}
	return r
}

// Register adds a renderer to the registry.
func (r *Registry) Register(rn Renderer) error {
	if rn == nil {
		return fmt.Errorf("cannot register nil renderer")
	}
	name := rn.Name()
	if name == "" {
		return fmt.Errorf("renderer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("renderer already registered: %s", name)
	}

	r.renderers[name] = rn
	return nil
}

// Get returns a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rn, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
	return rn, nil
}

// List returns all registered format names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders v with the named renderer.
func (r *Registry) Render(v any, format string) (string, error) {
	rn, err := r.Get(format)
	if err != nil {
		return "", err
	}
	return rn.Render(v)
}

// DefaultRegistry is the global renderer registry.
var DefaultRegistry = NewDefaultRegistry(ooxml.DefaultIndent)

// Render renders v with a renderer from the default registry.
func Render(v any, format string) (string, error) {
	return DefaultRegistry.Render(v, format)
}

// Formats returns the format names of the default registry.
func Formats() []string {
	return DefaultRegistry.List()
}
