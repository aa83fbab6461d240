package extractors

import (
	"context"
	"fmt"
	"strings"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

// Registry dispatches to the first enabled backend that supports a URL.
// It makes a single attempt; a failing backend is not followed by another.
type Registry struct {
	ordered []ports.Extractor
}

var _ ports.Extractor = (*Registry)(nil)

// NewRegistry enables the named backends, in order, out of available.
func NewRegistry(enabled []string, available ...ports.Extractor) (*Registry, error) {
	byName := make(map[string]ports.Extractor, len(available))
	for _, e := range available {
		if e == nil {
			return nil, fmt.Errorf("extractor must not be nil")
		}
		name := strings.ToLower(strings.TrimSpace(e.Name()))
		if name == "" {
			return nil, fmt.Errorf("extractor name must not be empty")
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate extractor %q", name)
		}
		byName[name] = e
	}

	r := &Registry{}
	for _, n := range enabled {
		e, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown extractor %q", n)
		}
		r.ordered = append(r.ordered, e)
	}
	if len(r.ordered) == 0 {
		return nil, fmt.Errorf("no extractor enabled")
	}
	return r, nil
}

func (r *Registry) Name() string {
	names := make([]string, len(r.ordered))
	for i, e := range r.ordered {
		names[i] = e.Name()
	}
	return strings.Join(names, ",")
}

// Select returns the backend that would handle rawURL.
func (r *Registry) Select(rawURL string) (ports.Extractor, bool) {
	for _, e := range r.ordered {
		if e.Supports(rawURL) {
			return e, true
		}
	}
	return nil, false
}

func (r *Registry) Supports(rawURL string) bool {
	_, ok := r.Select(rawURL)
	return ok
}

func (r *Registry) Extract(ctx context.Context, rawURL string, opts domain.ExtractOptions) (*domain.Extraction, error) {
	e, ok := r.Select(rawURL)
	if !ok {
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("no extractor supports %q", rawURL))
	}
	return e.Extract(ctx, rawURL, opts)
}
