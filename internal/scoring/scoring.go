// Package scoring provides the pure similarity and importance primitives
// used by the tier transfer and retrieval pipelines. All functions are
// stateless and deterministic.
package scoring

import (
	"math"
	"time"
)

// DefaultTimeConstant is the recency decay time constant in seconds.
const DefaultTimeConstant = 1.0e7

// Cosine computes cosine similarity between two vectors.
// Returns 0.0 for mismatched lengths, empty vectors, or zero magnitude
// rather than an error, so degraded embeddings never fail a pipeline.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard computes set overlap between two keyword lists.
// Duplicates are collapsed before comparison. Returns 0.0 when the
// union is empty. Symmetric in its arguments.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// FScore is the combined topical similarity used for segment matching:
// cosine over embeddings plus Jaccard over keywords. Range roughly [-1, 2].
func FScore(embA, embB []float32, keywordsA, keywordsB []string) float64 {
	return Cosine(embA, embB) + Jaccard(keywordsA, keywordsB)
}

// RecencyFactorAt computes exp(-dt/tau) where dt is the elapsed time
// between lastAccessed and now in seconds, clamped to >= 0.
// Equals 1.0 at dt=0 and approaches 0 as dt grows past tau.
func RecencyFactorAt(lastAccessed, now time.Time, timeConstant float64) float64 {
	if timeConstant <= 0 {
		timeConstant = DefaultTimeConstant
	}

	dt := now.Sub(lastAccessed).Seconds()
	if dt < 0 {
		dt = 0
	}

	return math.Exp(-dt / timeConstant)
}

// RecencyFactor computes the decay factor against the current time using
// the default time constant.
func RecencyFactor(lastAccessed time.Time) float64 {
	return RecencyFactorAt(lastAccessed, time.Now(), DefaultTimeConstant)
}

// HeatScore combines visit frequency, interaction volume, and recency:
// alpha*visits + beta*length + gamma*recency. Monotonic non-decreasing
// in each term for non-negative coefficients.
func HeatScore(visitCount, interactionLength int, recency float64, alpha, beta, gamma float64) float64 {
	return alpha*float64(visitCount) + beta*float64(interactionLength) + gamma*recency
}

// MergeEmbedding folds a new vector into a running centroid of n prior
// vectors, returning the centroid of n+1. Used when a recent item is
// attached to an existing segment. Falls back to the non-empty input
// when lengths mismatch.
func MergeEmbedding(centroid, v []float32, n int) []float32 {
	if len(centroid) == 0 {
		return v
	}
	if len(v) == 0 || len(v) != len(centroid) || n < 1 {
		return centroid
	}

	merged := make([]float32, len(centroid))
	for i := range centroid {
		merged[i] = (centroid[i]*float32(n) + v[i]) / float32(n+1)
	}
	return merged
}
