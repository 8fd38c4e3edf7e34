package embedding

import (
	"context"
	"log/slog"
)

// Fallback wraps a network embedder and degrades to the deterministic
// offline embedder when the primary fails. Interactions must never be
// dropped because an embedding server is down; matching quality
// degrades instead. The offline vectors use the primary's dimension so
// they remain index-compatible.
type Fallback struct {
	primary Embedder
	offline *Offline
	logger  *slog.Logger
}

var _ Embedder = (*Fallback)(nil)

// NewFallback wraps primary with offline degradation. A nil logger
// falls back to slog.Default.
func NewFallback(primary Embedder, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		primary: primary,
		offline: NewOffline(primary.Dimension()),
		logger:  logger,
	}
}

func (f *Fallback) Model() string {
	return f.primary.Model()
}

func (f *Fallback) Dimension() int {
	return f.primary.Dimension()
}

// Embed tries the primary backend first.
func (f *Fallback) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := f.primary.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}

	f.logger.Warn("embedding backend failed, degrading to offline vectors",
		"model", f.primary.Model(),
		"error", err)
	return f.offline.Embed(ctx, text)
}

// EmbedBatch tries the primary backend first.
func (f *Fallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := f.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return vecs, nil
	}

	f.logger.Warn("embedding backend failed, degrading to offline vectors",
		"model", f.primary.Model(),
		"count", len(texts),
		"error", err)
	return f.offline.EmbedBatch(ctx, texts)
}
