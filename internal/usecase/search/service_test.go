package search

import (
	"context"
	"errors"
	"testing"

	"github.com/myuzeplay/playsearch/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	hits    []domain.Hit
	err     error
	called  bool
	lastK   int
	lastFlt domain.Filter
	lastVec []float32
}

func (m *mockRepo) SearchKNN(_ context.Context, vector []float32, f domain.Filter, topK int) ([]domain.Hit, error) {
	m.called = true
	m.lastVec = vector
	m.lastFlt = f
	m.lastK = topK
	return m.hits, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 7}, nil
}

func testDefaults() domain.QueryDefaults {
	return domain.QueryDefaults{TopK: 50, MaxTopK: 100, ScoreThreshold: 0.7}
}

func hit(id string, score float64) domain.Hit {
	return domain.Hit{Entry: domain.Entry{PodcastID: id}, Score: score}
}

// --- Tests ---

func TestSearch_HappyPath(t *testing.T) {
	repo := &mockRepo{hits: []domain.Hit{hit("a", 0.9), hit("b", 0.8)}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, embed, testDefaults())

	hits, err := svc.Search(context.Background(), "hindi true crime", 10, 0.7, domain.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if !embed.called {
		t.Error("expected Embed to be called")
	}
	if !repo.called {
		t.Error("expected SearchKNN to be called")
	}
	if repo.lastK != 10 {
		t.Errorf("expected K=10, got %d", repo.lastK)
	}
}

func TestSearch_EmptyText(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, testDefaults())

	_, err := svc.Search(context.Background(), "   ", 10, 0.7, domain.Filter{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if embed.called {
		t.Error("Embed must not be called for invalid queries")
	}
	if repo.called {
		t.Error("SearchKNN must not be called for invalid queries")
	}
}

func TestSearch_DefaultTopK(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, testDefaults())

	if _, err := svc.Search(context.Background(), "query", 0, 0.7, domain.Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastK != 50 {
		t.Errorf("expected defaulted K=50, got %d", repo.lastK)
	}
}

func TestSearch_TopKTooLarge(t *testing.T) {
	svc := New(&mockRepo{}, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	_, err := svc.Search(context.Background(), "query", 500, 0.7, domain.Filter{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearch_ScoresMonotonicNonIncreasing(t *testing.T) {
	// Store order is not trusted; the service re-sorts before cutting.
	repo := &mockRepo{hits: []domain.Hit{hit("a", 0.75), hit("b", 0.95), hit("c", 0.85)}}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	hits, err := svc.Search(context.Background(), "query", 10, 0.7, domain.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("scores not monotonic at %d: %f > %f", i, hits[i].Score, hits[i-1].Score)
		}
	}
}

func TestSearch_ThresholdFiltersTail(t *testing.T) {
	repo := &mockRepo{hits: []domain.Hit{hit("a", 0.9), hit("b", 0.72), hit("c", 0.4)}}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	hits, err := svc.Search(context.Background(), "query", 10, 0.7, domain.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits above threshold, got %d", len(hits))
	}
	if hits[1].Entry.PodcastID != "b" {
		t.Fatalf("unexpected tail hit: %s", hits[1].Entry.PodcastID)
	}
}

func TestSearch_ResultCountBoundedByTopK(t *testing.T) {
	repo := &mockRepo{hits: []domain.Hit{hit("a", 0.9), hit("b", 0.85), hit("c", 0.8)}}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	hits, err := svc.Search(context.Background(), "query", 2, 0.7, domain.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) > 2 {
		t.Fatalf("expected at most 2 hits, got %d", len(hits))
	}
}

func TestSearch_EmbedderError(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(repo, embed, testDefaults())

	_, err := svc.Search(context.Background(), "query", 10, 0.7, domain.Filter{})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if repo.called {
		t.Error("SearchKNN must not be called when embedding fails")
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo := &mockRepo{err: domain.ErrVectorStoreError}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	_, err := svc.Search(context.Background(), "query", 10, 0.7, domain.Filter{})
	if !errors.Is(err, domain.ErrVectorStoreError) {
		t.Fatalf("expected ErrVectorStoreError, got %v", err)
	}
}

func TestSearch_FilterPassedThrough(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{vec: []float32{0.1}}, testDefaults())

	f := domain.Filter{ContentTypes: []string{"Vodacast"}, Country: "IN"}
	if _, err := svc.Search(context.Background(), "query", 10, 0.7, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFlt.Country != "IN" {
		t.Errorf("expected filter country IN, got %q", repo.lastFlt.Country)
	}
}
