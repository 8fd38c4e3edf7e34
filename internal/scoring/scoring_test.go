package scoring

import (
	"math"
	"testing"
	"time"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical unit vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"empty first", nil, []float32{1, 2}, 0.0},
		{"empty second", []float32{1, 2}, nil, 0.0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Cosine(v, v) = %v, want 1.0", got)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical sets", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0.0},
		{"both empty", nil, nil, 0.0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"duplicates collapsed", []string{"a", "a", "b"}, []string{"a", "b", "b"}, 1.0},
		{"one empty", []string{"a"}, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardSymmetric(t *testing.T) {
	a := []string{"memory", "agent", "tier"}
	b := []string{"tier", "heat", "score"}
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard is not symmetric")
	}
}

func TestFScore(t *testing.T) {
	emb := []float32{1, 0}
	kw := []string{"x", "y"}

	// Identical embedding and keywords: 1.0 + 1.0
	if got := FScore(emb, emb, kw, kw); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("FScore identical = %v, want 2.0", got)
	}

	// Disjoint everything: 0.0 + 0.0
	if got := FScore([]float32{1, 0}, []float32{0, 1}, []string{"a"}, []string{"b"}); got != 0.0 {
		t.Errorf("FScore disjoint = %v, want 0.0", got)
	}
}

func TestRecencyFactor(t *testing.T) {
	now := time.Now()

	// No elapsed time: exactly 1.0
	if got := RecencyFactorAt(now, now, DefaultTimeConstant); got != 1.0 {
		t.Errorf("RecencyFactorAt(now, now) = %v, want 1.0", got)
	}

	// Strictly decreasing in elapsed time
	day := RecencyFactorAt(now.Add(-24*time.Hour), now, DefaultTimeConstant)
	week := RecencyFactorAt(now.Add(-7*24*time.Hour), now, DefaultTimeConstant)
	if !(day < 1.0 && week < day) {
		t.Errorf("recency not strictly decreasing: day=%v week=%v", day, week)
	}

	// Approaches 0 far past the time constant
	ancient := RecencyFactorAt(now.Add(-100000*time.Hour), now, DefaultTimeConstant)
	if ancient > 0.001 {
		t.Errorf("ancient recency = %v, want near 0", ancient)
	}

	// Future timestamps clamp to 1.0
	if got := RecencyFactorAt(now.Add(time.Hour), now, DefaultTimeConstant); got != 1.0 {
		t.Errorf("future timestamp = %v, want 1.0", got)
	}
}

func TestHeatScoreMonotonic(t *testing.T) {
	base := HeatScore(2, 5, 0.5, 1.0, 1.0, 1.0)

	if HeatScore(3, 5, 0.5, 1.0, 1.0, 1.0) < base {
		t.Error("heat not monotonic in visit count")
	}
	if HeatScore(2, 6, 0.5, 1.0, 1.0, 1.0) < base {
		t.Error("heat not monotonic in interaction length")
	}
	if HeatScore(2, 5, 0.9, 1.0, 1.0, 1.0) < base {
		t.Error("heat not monotonic in recency")
	}
}

func TestHeatScoreCoefficients(t *testing.T) {
	// alpha*visits + beta*length + gamma*recency
	got := HeatScore(2, 4, 0.5, 1.0, 0.5, 2.0)
	want := 2.0 + 2.0 + 1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("HeatScore = %v, want %v", got, want)
	}
}

func TestMergeEmbedding(t *testing.T) {
	centroid := []float32{1, 1}
	v := []float32{3, 5}

	merged := MergeEmbedding(centroid, v, 1)
	want := []float32{2, 3}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("MergeEmbedding = %v, want %v", merged, want)
			break
		}
	}

	// Length mismatch keeps the centroid
	if got := MergeEmbedding(centroid, []float32{1}, 1); &got[0] != &centroid[0] {
		if got[0] != centroid[0] || got[1] != centroid[1] {
			t.Errorf("mismatched merge = %v, want centroid %v", got, centroid)
		}
	}

	// Empty centroid adopts the new vector
	if got := MergeEmbedding(nil, v, 0); len(got) != 2 || got[0] != 3 {
		t.Errorf("empty centroid merge = %v, want %v", got, v)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "Machine learning is great", []string{"machine", "learning", "great"}},
		{"dedup", "go go go routines", []string{"go", "routines"}},
		{"stopwords dropped", "what is the answer", []string{"answer"}},
		{"punctuation split", "vector-search, embeddings!", []string{"vector", "search", "embeddings"}},
		{"empty", "", nil},
		{"whitespace only", "   \t  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Keywords(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keywords(%q) = %v, want %v", tt.in, got, tt.want)
					break
				}
			}
		})
	}
}

func TestUnionKeywords(t *testing.T) {
	got := UnionKeywords([]string{"a", "b"}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("UnionKeywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UnionKeywords = %v, want %v", got, want)
		}
	}
}
