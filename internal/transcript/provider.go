package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ContentDigest/internal/domain"
	"ContentDigest/internal/ports"
)

// Provider implements TranscriptProvider by walking registered sources in
// order until one yields text.
type Provider struct {
	registry *Registry
	logger   *slog.Logger
}

var _ ports.TranscriptProvider = (*Provider)(nil)

// NewProvider wires the source registry.
func NewProvider(reg *Registry, log *slog.Logger) *Provider {
	return &Provider{registry: reg, logger: log}
}

// Transcribe tries every supporting source and returns the first non-empty
// transcript. It fails only when no source produced text.
func (p *Provider) Transcribe(ctx context.Context, c domain.MediaCandidate) (domain.Transcript, error) {
	if p.registry == nil {
		return domain.Transcript{}, fmt.Errorf("transcript registry is not configured")
	}

	sources := p.registry.For(c)
	if len(sources) == 0 {
		return domain.Transcript{}, fmt.Errorf("no transcript source supports %s media on %s", c.Kind, c.Platform)
	}

	var errs []error
	for _, src := range sources {
		p.debug("extract transcript", "source", src.Name(), "platform", c.Platform, "url", c.CanonicalURL)
		tr, err := src.Extract(ctx, c)
		if err != nil {
			p.debug("transcript source failed", "source", src.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if strings.TrimSpace(tr.Text) == "" {
			errs = append(errs, fmt.Errorf("%s: empty transcript", src.Name()))
			continue
		}
		if tr.Source == "" {
			tr.Source = src.Name()
		}
		p.debug("transcript extracted", "source", src.Name(), "chars", len(tr.Text))
		return tr, nil
	}
	return domain.Transcript{}, fmt.Errorf("all transcript sources failed: %w", errors.Join(errs...))
}

func (p *Provider) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
