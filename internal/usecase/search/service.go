// Package search implements semantic catalog search: embed the query
// text, run KNN against the vector store, and post-filter by score.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/myuzeplay/playsearch/internal/domain"
	"github.com/myuzeplay/playsearch/internal/metrics"
)

// Service handles semantic search over the catalog.
type Service struct {
	repo     Repository
	embed    Embedder
	defaults domain.QueryDefaults
}

// New creates a search service.
func New(repo Repository, embed Embedder, defaults domain.QueryDefaults) *Service {
	return &Service{repo: repo, embed: embed, defaults: defaults}
}

// Search validates the request, embeds the query, and returns up to
// TopK hits at or above the score threshold, closest first.
func (s *Service) Search(
	ctx context.Context, text string, topK int, scoreThreshold float64, f domain.Filter,
) ([]domain.Hit, error) {
	hits, err := s.search(ctx, text, topK, scoreThreshold, f)
	observeSearch(err, len(hits))
	return hits, err
}

func (s *Service) search(
	ctx context.Context, text string, topK int, scoreThreshold float64, f domain.Filter,
) ([]domain.Hit, error) {
	q, err := domain.NewQuery(text, topK, scoreThreshold, f, s.defaults)
	if err != nil {
		return nil, err
	}

	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.repo.SearchKNN(ctx, embResult.Embedding, q.Filter(), q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	// Post-filter: score threshold. Sorted best first, so the tail can
	// be cut at the first miss.
	cut := len(hits)
	for i, h := range hits {
		if h.Score < q.ScoreThreshold() {
			cut = i
			break
		}
	}
	hits = hits[:cut]

	if len(hits) > q.TopK() {
		hits = hits[:q.TopK()]
	}

	return hits, nil
}

func observeSearch(err error, resultCount int) {
	switch {
	case err == nil:
		metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
		metrics.SearchResultsReturned.Observe(float64(resultCount))
	case errors.Is(err, domain.ErrValidation):
		metrics.SearchRequestsTotal.WithLabelValues("validation_error").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("upstream_error").Inc()
	}
}
