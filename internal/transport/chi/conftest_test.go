package chi

import (
	"context"
	"net/http"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/myuzeplay/playsearch/internal/domain"
	bucketuc "github.com/myuzeplay/playsearch/internal/usecase/bucket"
	diaguc "github.com/myuzeplay/playsearch/internal/usecase/diag"
	healthuc "github.com/myuzeplay/playsearch/internal/usecase/health"
	searchuc "github.com/myuzeplay/playsearch/internal/usecase/search"
)

// stubRepo serves both the search and diag repository contracts.
type stubRepo struct {
	hits       []domain.Hit
	knnErr     error
	count      int
	countErr   error
	calls      int
	lastFilter domain.Filter
}

func (s *stubRepo) SearchKNN(_ context.Context, _ []float32, f domain.Filter, _ int) ([]domain.Hit, error) {
	s.calls++
	s.lastFilter = f
	return s.hits, s.knnErr
}

func (s *stubRepo) Count(_ context.Context) (int, error) {
	s.calls++
	return s.count, s.countErr
}

// stubEmbedder serves both the single and batch embedding contracts.
type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec}, nil
}

func (s *stubEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

type testFixture struct {
	repo    *stubRepo
	embed   *stubEmbedder
	handler http.Handler
}

func newTestServer(t *testing.T) *testFixture {
	t.Helper()

	repo := &stubRepo{}
	embed := &stubEmbedder{vec: []float32{0.1, 0.2}}

	defaults := domain.QueryDefaults{TopK: 50, MaxTopK: 100, ScoreThreshold: 0.7}
	markets := map[string][]domain.BucketCriterion{
		"IN": {{Name: "Crime", Description: "true crime"}},
	}

	srv := NewServer(
		searchuc.New(repo, embed, defaults),
		bucketuc.New(embed, 0.3, "IN", markets),
		healthuc.New("playsearch", "test"),
		diaguc.New(embed, repo, "Hindi Bollywood entertainment"),
		zap.NewNop(),
	)

	r := chirouter.NewRouter()
	srv.Routes(r)

	return &testFixture{repo: repo, embed: embed, handler: r}
}
