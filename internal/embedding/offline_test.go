package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestOfflineDeterministic(t *testing.T) {
	ctx := context.Background()
	emb := NewOffline(0)

	a, err := emb.Embed(ctx, "the deployment pipeline")
	if err != nil {
		t.Fatal(err)
	}
	b, err := emb.Embed(ctx, "the deployment pipeline")
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != 384 {
		t.Fatalf("dimension = %d, want 384", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOfflineDistinctTexts(t *testing.T) {
	ctx := context.Background()
	emb := NewOffline(0)

	a, _ := emb.Embed(ctx, "kubernetes networking")
	b, _ := emb.Embed(ctx, "favorite pizza toppings")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestOfflineUnitNorm(t *testing.T) {
	ctx := context.Background()
	emb := NewOffline(128)

	vec, err := emb.Embed(ctx, "norm check")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 128 {
		t.Fatalf("dimension = %d, want 128", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestOfflineBatch(t *testing.T) {
	ctx := context.Background()
	emb := NewOffline(0)

	vecs, err := emb.EmbedBatch(ctx, []string{"one", "two"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}

	single, _ := emb.Embed(ctx, "one")
	for i := range single {
		if vecs[0][i] != single[i] {
			t.Fatal("batch vector differs from single embed")
		}
	}
}

// failingEmbedder always errors, to exercise the fallback path.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

func (failingEmbedder) Model() string  { return "broken" }
func (failingEmbedder) Dimension() int { return 64 }

func TestFallbackDegradesToOffline(t *testing.T) {
	ctx := context.Background()
	fb := NewFallback(failingEmbedder{}, nil)

	vec, err := fb.Embed(ctx, "still works")
	if err != nil {
		t.Fatalf("fallback should absorb primary failure: %v", err)
	}
	if len(vec) != 64 {
		t.Errorf("dimension = %d, want primary's 64", len(vec))
	}

	want, _ := NewOffline(64).Embed(ctx, "still works")
	for i := range vec {
		if vec[i] != want[i] {
			t.Fatal("fallback vector is not the offline vector")
		}
	}
}

func TestFallbackPassesThrough(t *testing.T) {
	ctx := context.Background()
	fb := NewFallback(NewOffline(32), nil)

	vec, err := fb.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 32 {
		t.Errorf("dimension = %d, want 32", len(vec))
	}
}

func TestNewProviderSelection(t *testing.T) {
	emb, err := New(Config{Provider: ProviderOffline})
	if err != nil {
		t.Fatal(err)
	}
	if emb.Model() != OfflineModel {
		t.Errorf("model = %s, want %s", emb.Model(), OfflineModel)
	}

	if _, err := New(Config{Provider: ProviderVoyage}); err == nil {
		t.Error("voyage without API key should fail")
	}

	if _, err := New(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("unknown provider should fail")
	}
}
