package transcript

import (
	"context"
	"fmt"

	"ContentDigest/internal/domain"
)

// Source captures a single transcript extraction strategy (platform captions,
// speech-to-text, etc.).
type Source interface {
	Name() string
	Supports(c domain.MediaCandidate) bool
	Extract(ctx context.Context, c domain.MediaCandidate) (domain.Transcript, error)
}

// Registry keeps sources in registration order; earlier sources win.
type Registry struct {
	sources []Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a source to the fallback chain.
func (r *Registry) Register(source Source) {
	r.sources = append(r.sources, source)
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	for _, src := range r.sources {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("transcript source %s is not registered", name)
}

// For returns the sources that support the candidate, in registration order.
func (r *Registry) For(c domain.MediaCandidate) []Source {
	var matched []Source
	for _, src := range r.sources {
		if src.Supports(c) {
			matched = append(matched, src)
		}
	}
	return matched
}
