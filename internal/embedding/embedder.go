// Package embedding provides text embedding generation with multiple
// backend support. Segments carry a 384-dimensional centroid, so every
// backend here must produce vectors of that dimension or fail loudly.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
)

// Embedder defines the interface for text embedding providers.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// More efficient than multiple Embed calls for bulk operations.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the embedding vector dimension.
	// CRITICAL: Must match the HNSW index dimension in the schema.
	Dimension() int
}

// ProviderType identifies the embedding provider.
type ProviderType string

const (
	// ProviderOllama uses a local Ollama server for embeddings.
	ProviderOllama ProviderType = "ollama"

	// ProviderVoyage uses the Voyage AI API for embeddings.
	ProviderVoyage ProviderType = "voyage"

	// ProviderOffline uses the deterministic hash-based embedder.
	// No network, no model - suitable for tests and air-gapped runs.
	ProviderOffline ProviderType = "offline"
)

// Config holds configuration for creating an Embedder.
type Config struct {
	// Provider specifies which embedding backend to use.
	Provider ProviderType

	// Model is the embedding model name (provider-specific).
	// Ollama: "all-minilm:l6-v2" (384-dim)
	Model string

	// ExpectedDimension is the required output dimension.
	// Set to 0 to use the provider's default.
	ExpectedDimension int

	// Voyage-specific
	VoyageAPIKey string

	// Logger for degraded-mode warnings. May be nil.
	Logger *slog.Logger
}

// New creates an Embedder based on the provided configuration. Network
// providers are wrapped with the offline fallback so an unreachable
// backend degrades retrieval quality instead of failing writes.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		client, err := NewOllamaClient(cfg.Model, cfg.ExpectedDimension)
		if err != nil {
			return nil, err
		}
		return NewFallback(client, cfg.Logger), nil

	case ProviderVoyage:
		if cfg.VoyageAPIKey == "" {
			return nil, fmt.Errorf("voyage provider requires API key")
		}
		client, err := NewVoyageClient(cfg.VoyageAPIKey, cfg.Model, cfg.ExpectedDimension)
		if err != nil {
			return nil, err
		}
		return NewFallback(client, cfg.Logger), nil

	case ProviderOffline:
		return NewOffline(cfg.ExpectedDimension), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
