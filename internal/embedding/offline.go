package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// OfflineModel is the reported model name for the offline embedder.
const OfflineModel = "offline-hash"

// Offline is a deterministic, network-free embedder. It seeds a linear
// congruential generator with the FNV-64a hash of the text and emits a
// normalized unit vector. Identical texts always map to identical
// vectors, so similarity matching stays consistent even though the
// vectors carry no semantic signal.
type Offline struct {
	dimension int
}

var _ Embedder = (*Offline)(nil)

// NewOffline creates a deterministic embedder. Zero dimension falls
// back to the 384 the vector index expects.
func NewOffline(dimension int) *Offline {
	if dimension == 0 {
		dimension = DefaultOllamaDimension
	}
	return &Offline{dimension: dimension}
}

func (o *Offline) Model() string {
	return OfflineModel
}

func (o *Offline) Dimension() int {
	return o.dimension
}

// Embed returns the deterministic vector for text. Never fails.
func (o *Offline) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, o.dimension)
	var norm float64
	for i := range vec {
		// Knuth's MMIX LCG constants.
		state = state*6364136223846793005 + 1442695040888963407
		// Map the top bits to [-1, 1).
		vec[i] = float32(int64(state>>32))/float32(1<<31) - 1
		norm += float64(vec[i]) * float64(vec[i])
	}

	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec, nil
}

// EmbedBatch returns deterministic vectors for each text.
func (o *Offline) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := o.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}
