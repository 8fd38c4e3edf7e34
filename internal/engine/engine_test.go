package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"testing"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/embedding"
	"github.com/norbu09/memtier/internal/models"
)

func rid(table, id string) surrealmodels.RecordID {
	return surrealmodels.RecordID{Table: table, ID: id}
}

// fakeStore is an in-memory Store for exercising the engine without a
// database. Items are kept sorted oldest first, matching the query
// contracts of the real client.
type fakeStore struct {
	items     []models.RecentItem
	segments  map[string]*models.Segment
	segOrder  []string
	knowledge map[string]*models.PersonaKnowledge
	shared    map[string]*models.SharedEntry

	failSegmentCreates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		segments:  make(map[string]*models.Segment),
		knowledge: make(map[string]*models.PersonaKnowledge),
		shared:    make(map[string]*models.SharedEntry),
	}
}

func (f *fakeStore) addItem(id, agentID, query string, created time.Time) {
	f.items = append(f.items, models.RecentItem{
		ID:      rid("recent_item", id),
		AgentID: agentID,
		Query:   query,
		Created: created,
	})
	sort.SliceStable(f.items, func(i, j int) bool { return f.items[i].Created.Before(f.items[j].Created) })
}

func (f *fakeStore) addSegment(id, agentID, summary string, visits, itemCount int, accessed time.Time) {
	f.segments[id] = &models.Segment{
		ID:         rid("segment", id),
		AgentID:    agentID,
		Summary:    summary,
		Keywords:   []string{},
		VisitCount: visits,
		ItemCount:  itemCount,
		Accessed:   accessed,
	}
	f.segOrder = append(f.segOrder, id)
}

func (f *fakeStore) ListUnlinkedRecentItems(_ context.Context, agentID string) ([]models.RecentItem, error) {
	var out []models.RecentItem
	for _, it := range f.items {
		if it.AgentID == agentID && it.SegmentID == nil {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteRecentItem(_ context.Context, id string) (int, error) {
	for i, it := range f.items {
		if models.MustRecordIDString(it.ID) == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) CreateSegment(_ context.Context, id, agentID, summary string, keywords []string, emb []float32) (*models.Segment, error) {
	if f.failSegmentCreates > 0 {
		f.failSegmentCreates--
		return nil, errors.New("injected create failure")
	}
	seg := &models.Segment{
		ID:        rid("segment", id),
		AgentID:   agentID,
		Summary:   summary,
		Keywords:  keywords,
		Embedding: emb,
		ItemCount: 1,
	}
	f.segments[id] = seg
	f.segOrder = append(f.segOrder, id)
	return seg, nil
}

func (f *fakeStore) ListSegments(_ context.Context, agentID string) ([]models.Segment, error) {
	var out []models.Segment
	for _, id := range f.segOrder {
		if seg, ok := f.segments[id]; ok && seg.AgentID == agentID {
			out = append(out, *seg)
		}
	}
	return out, nil
}

func (f *fakeStore) AttachToSegment(_ context.Context, id string, keywords []string, emb []float32) (*models.Segment, error) {
	seg, ok := f.segments[id]
	if !ok {
		return nil, errors.New("segment not found")
	}
	have := make(map[string]bool, len(seg.Keywords))
	for _, k := range seg.Keywords {
		have[k] = true
	}
	for _, k := range keywords {
		if !have[k] {
			seg.Keywords = append(seg.Keywords, k)
		}
	}
	seg.Embedding = emb
	seg.ItemCount++
	seg.Accessed = time.Now()
	return seg, nil
}

func (f *fakeStore) UpdateSegmentHeat(_ context.Context, id string, heat float64) error {
	if seg, ok := f.segments[id]; ok {
		seg.Heat = heat
	}
	return nil
}

func (f *fakeStore) DeleteSegments(_ context.Context, ids ...string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := f.segments[id]; ok {
			delete(f.segments, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UnlinkSegmentItems(_ context.Context, segmentID string) error {
	for i := range f.items {
		if f.items[i].SegmentID != nil && *f.items[i].SegmentID == segmentID {
			f.items[i].SegmentID = nil
		}
	}
	return nil
}

func (f *fakeStore) CreateKnowledge(_ context.Context, id string, k *models.PersonaKnowledge) (*models.PersonaKnowledge, error) {
	stored := *k
	stored.ID = rid("persona_knowledge", id)
	f.knowledge[id] = &stored
	return &stored, nil
}

func (f *fakeStore) GetKnowledge(_ context.Context, id string) (*models.PersonaKnowledge, error) {
	k, ok := f.knowledge[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *k
	return &copied, nil
}

func (f *fakeStore) ListUnpromotedKnowledge(_ context.Context, agentID string) ([]models.PersonaKnowledge, error) {
	var out []models.PersonaKnowledge
	for _, k := range f.knowledge {
		if k.AgentID == agentID && !k.Promoted {
			out = append(out, *k)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkKnowledgePromoted(_ context.Context, id, sharedEntryID string) (bool, error) {
	k, ok := f.knowledge[id]
	if !ok || k.Promoted {
		return false, nil
	}
	k.Promoted = true
	k.SharedEntryID = &sharedEntryID
	return true, nil
}

func (f *fakeStore) CreateSharedEntry(_ context.Context, id, content, agentID string, importance float64) (*models.SharedEntry, error) {
	entry := &models.SharedEntry{
		ID:         rid("shared_entry", id),
		Content:    content,
		AgentID:    agentID,
		Importance: importance,
		Created:    time.Now(),
	}
	f.shared[id] = entry
	return entry, nil
}

func (f *fakeStore) CountSharedEntries(_ context.Context) (int, error) {
	return len(f.shared), nil
}

func (f *fakeStore) ListSharedOverflow(_ context.Context, n int) ([]models.SharedEntry, error) {
	var all []models.SharedEntry
	for _, e := range f.shared {
		all = append(all, *e)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Importance != all[j].Importance {
			return all[i].Importance < all[j].Importance
		}
		return all[i].Created.Before(all[j].Created)
	})
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}

func (f *fakeStore) DeleteSharedEntries(_ context.Context, ids ...string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := f.shared[id]; ok {
			delete(f.shared, id)
			n++
		}
	}
	return n, nil
}

func testEngine(store Store) *Engine {
	return New(store, embedding.NewOffline(64), slog.New(slog.DiscardHandler))
}

func TestTransferNoOpWithinCapacity(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 7; i++ {
		store.addItem(fmt.Sprintf("i%d", i), "agent-a", "q", time.Now().Add(time.Duration(i)*time.Second))
	}

	report, err := testEngine(store).TransferRecentItems(context.Background(), "agent-a", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}
	if report.Moved != 0 || len(store.items) != 7 {
		t.Errorf("capacity not exceeded, expected no-op: %+v", report)
	}
}

func TestTransferOverflowOldestFirst(t *testing.T) {
	store := newFakeStore()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 8; i++ {
		store.addItem(fmt.Sprintf("i%d", i), "agent-a", fmt.Sprintf("query %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	report, err := testEngine(store).TransferRecentItems(context.Background(), "agent-a", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}

	if report.Moved != 1 {
		t.Fatalf("moved = %d, want exactly 1", report.Moved)
	}
	if report.NewSegment != 1 {
		t.Errorf("new segments = %d, want 1", report.NewSegment)
	}
	if len(store.items) != 7 {
		t.Fatalf("remaining items = %d, want 7", len(store.items))
	}
	// The oldest item (i0) must be the one that moved.
	for _, it := range store.items {
		if models.MustRecordIDString(it.ID) == "i0" {
			t.Error("oldest item should have been transferred")
		}
	}
}

func TestTransferAttachesToMatchingSegment(t *testing.T) {
	store := newFakeStore()
	engine := testEngine(store)
	ctx := context.Background()

	// Seed a segment from the same text the overflow item carries: the
	// offline embedder is deterministic, so cosine is 1.0 and jaccard
	// 1.0, well above the 0.6 threshold.
	text := "tell me about kubernetes networking"
	vec, _ := engine.embedder.Embed(ctx, "tell me about kubernetes networking\n")
	if _, err := store.CreateSegment(ctx, "seed", "agent-a", "kubernetes", []string{"tell", "about", "kubernetes", "networking"}, vec); err != nil {
		t.Fatal(err)
	}

	base := time.Now().Add(-time.Hour)
	store.addItem("old", "agent-a", text, base)
	for i := 0; i < 7; i++ {
		store.addItem(fmt.Sprintf("i%d", i), "agent-a", "filler", base.Add(time.Duration(i+1)*time.Minute))
	}

	report, err := engine.TransferRecentItems(ctx, "agent-a", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}

	if report.Attached != 1 || report.NewSegment != 0 {
		t.Fatalf("expected attachment to existing segment: %+v", report)
	}
	if store.segments["seed"].ItemCount != 2 {
		t.Errorf("item count = %d, want 2", store.segments["seed"].ItemCount)
	}
}

func TestTransferIsolation(t *testing.T) {
	store := newFakeStore()
	store.failSegmentCreates = 1

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 9; i++ {
		store.addItem(fmt.Sprintf("i%d", i), "agent-a", fmt.Sprintf("distinct topic %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	report, err := testEngine(store).TransferRecentItems(context.Background(), "agent-a", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Two overflow items: the first hits the injected failure, the
	// second must still transfer.
	if report.Failed != 1 || report.Moved != 1 {
		t.Errorf("failed = %d moved = %d, want 1 and 1", report.Failed, report.Moved)
	}
	if len(store.items) != 8 {
		t.Errorf("remaining items = %d, want 8", len(store.items))
	}
}

func TestCapacityEviction(t *testing.T) {
	store := newFakeStore()
	accessed := time.Now()
	for i := 0; i < 12; i++ {
		// Heat recomputes to roughly visits + items + recency, so
		// ascending visit counts give a known eviction order.
		store.addSegment(fmt.Sprintf("s%d", i), "agent-a", fmt.Sprintf("topic %d", i), i, 1, accessed)
	}

	cfg := config.DefaultTierConfig()
	cfg.Tier2Capacity = 10
	cfg.PromotionThreshold = 1000 // keep promotion out of this test

	report, err := testEngine(store).RunCapacityCheck(context.Background(), "agent-a", cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Evicted) != 2 {
		t.Fatalf("evicted = %v, want exactly 2", report.Evicted)
	}
	if len(report.Promoted) != 0 {
		t.Error("eviction cycle must not promote")
	}
	for _, id := range []string{"s0", "s1"} {
		if _, ok := store.segments[id]; ok {
			t.Errorf("lowest-heat segment %s should be evicted", id)
		}
	}
	if len(store.segments) != 10 {
		t.Errorf("segments = %d, want 10", len(store.segments))
	}

	// Re-running within capacity is a no-op.
	report, err = testEngine(store).RunCapacityCheck(context.Background(), "agent-a", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Evicted) != 0 || len(store.segments) != 10 {
		t.Errorf("second run should be a no-op: %+v", report)
	}
}

func TestEvictionTieBreakOldestAccessed(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	// Equal heat inputs, different access times.
	store.addSegment("young", "agent-a", "young", 0, 1, now)
	store.addSegment("old", "agent-a", "old", 0, 1, now.Add(-time.Minute))
	store.addSegment("keep", "agent-a", "keep", 5, 1, now)

	cfg := config.DefaultTierConfig()
	cfg.Tier2Capacity = 2
	cfg.PromotionThreshold = 1000

	report, err := testEngine(store).RunCapacityCheck(context.Background(), "agent-a", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Evicted) != 1 || report.Evicted[0] != "old" {
		t.Errorf("evicted = %v, want the oldest-accessed of the tied pair", report.Evicted)
	}
}

func TestPromotionOfHotSegment(t *testing.T) {
	store := newFakeStore()
	store.addSegment("hot", "agent-a", "database tuning", 4, 6, time.Now())
	store.addSegment("cold", "agent-a", "small talk", 0, 1, time.Now().Add(-90*24*time.Hour))
	store.segments["hot"].Keywords = []string{"database", "tuning"}

	report, err := testEngine(store).RunCapacityCheck(context.Background(), "agent-a", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Promoted) != 1 || report.Promoted[0] != "hot" {
		t.Fatalf("promoted = %v, want [hot]", report.Promoted)
	}
	if _, ok := store.segments["hot"]; ok {
		t.Error("promoted segment must be removed from tier 2")
	}
	if _, ok := store.segments["cold"]; !ok {
		t.Error("cold segment must survive")
	}

	facts, traits := 0, 0
	for _, k := range store.knowledge {
		switch k.Kind {
		case models.KindFact:
			facts++
		case models.KindTrait:
			traits++
		}
	}
	if facts != 1 {
		t.Errorf("facts = %d, want 1", facts)
	}
	if traits < 1 {
		t.Errorf("traits = %d, want at least 1", traits)
	}
}

func TestPromotionIdempotence(t *testing.T) {
	store := newFakeStore()
	k, _ := models.NewAgentKnowledge("agent-a", models.KindFact, "the service deployment process requires a configuration review", 0.9)
	if _, err := store.CreateKnowledge(context.Background(), "k1", k); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultTierConfig()
	cfg.ImportanceThreshold = 0.05

	engine := testEngine(store)
	promoted, _, err := engine.EvaluateKnowledge(context.Background(), "k1", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !promoted {
		t.Fatal("first evaluation should promote")
	}
	if len(store.shared) != 1 {
		t.Fatalf("shared entries = %d, want 1", len(store.shared))
	}

	promoted, score, err := engine.EvaluateKnowledge(context.Background(), "k1", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if promoted {
		t.Error("second evaluation must not promote again")
	}
	if score <= 0 {
		t.Error("re-evaluation should still report the importance score")
	}
	if len(store.shared) != 1 {
		t.Errorf("shared entries = %d after re-evaluation, want 1", len(store.shared))
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	store := newFakeStore()
	k, _ := models.NewAgentKnowledge("agent-a", models.KindFact, "ok", 0.5)
	if _, err := store.CreateKnowledge(context.Background(), "k1", k); err != nil {
		t.Fatal(err)
	}

	promoted, _, err := testEngine(store).EvaluateKnowledge(context.Background(), "k1", config.DefaultTierConfig())
	if err != nil {
		t.Fatal(err)
	}
	if promoted || len(store.shared) != 0 {
		t.Error("low-importance entry must not promote")
	}
}

func TestEnforceSharedCapacity(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	for i, imp := range []float64{0.95, 0.2, 0.85, 0.1, 0.9} {
		if _, err := store.CreateSharedEntry(ctx, fmt.Sprintf("se%d", i), "c", "agent-a", imp); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.DefaultTierConfig()
	cfg.Tier4Capacity = 3

	evicted, err := testEngine(store).EnforceSharedCapacity(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if evicted != 2 {
		t.Fatalf("evicted = %d, want 2", evicted)
	}
	for _, id := range []string{"se1", "se3"} {
		if _, ok := store.shared[id]; ok {
			t.Errorf("low-importance entry %s should be evicted", id)
		}
	}

	// Within capacity: no-op.
	evicted, err = testEngine(store).EnforceSharedCapacity(ctx, cfg)
	if err != nil || evicted != 0 {
		t.Errorf("second pass: evicted = %d err = %v, want 0, nil", evicted, err)
	}
}
