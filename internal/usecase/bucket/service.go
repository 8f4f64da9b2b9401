// Package bucket groups catalog items into named buckets by embedding
// both the items and the bucket criteria, then assigning each item to
// its nearest criterion above a similarity threshold. Items matching no
// criterion land in the reserved "ungrouped" bucket.
package bucket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myuzeplay/playsearch/internal/domain"
	"github.com/myuzeplay/playsearch/internal/logger"
	"github.com/myuzeplay/playsearch/internal/metrics"
)

// Result is one completed bucket generation run.
type Result struct {
	RunID       string
	Buckets     map[string][]string
	Assignments []domain.BucketAssignment
}

// Service generates buckets from items and criteria.
type Service struct {
	embed         Embedder
	threshold     float64
	defaultMarket string
	markets       map[string][]domain.BucketCriterion
}

// New creates a bucket service. markets supplies per-market default
// criteria used when a request carries none.
func New(embed Embedder, threshold float64, defaultMarket string, markets map[string][]domain.BucketCriterion) *Service {
	return &Service{
		embed:         embed,
		threshold:     threshold,
		defaultMarket: defaultMarket,
		markets:       markets,
	}
}

// Generate assigns every item to exactly one bucket. When criteria is
// empty the configured market templates are used instead.
func (s *Service) Generate(
	ctx context.Context, items []domain.BucketItem, criteria []domain.BucketCriterion, market string,
) (Result, error) {
	res, err := s.generate(ctx, items, criteria, market)
	switch {
	case err == nil:
		metrics.BucketRunsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrValidation):
		metrics.BucketRunsTotal.WithLabelValues("validation_error").Inc()
	default:
		metrics.BucketRunsTotal.WithLabelValues("upstream_error").Inc()
	}
	return res, err
}

func (s *Service) generate(
	ctx context.Context, items []domain.BucketItem, criteria []domain.BucketCriterion, market string,
) (Result, error) {
	if len(items) == 0 {
		return Result{}, fmt.Errorf("%w: items are required", domain.ErrValidation)
	}
	for i, it := range items {
		if strings.TrimSpace(it.Text) == "" {
			return Result{}, fmt.Errorf("%w: item %d has empty text", domain.ErrValidation, i)
		}
	}

	criteria, err := s.resolveCriteria(criteria, market)
	if err != nil {
		return Result{}, err
	}

	runID := uuid.NewString()
	log := logger.FromContext(ctx).With(
		zap.String("bucket_run_id", runID),
		zap.Int("items", len(items)),
		zap.Int("criteria", len(criteria)),
	)

	critVecs, err := s.embedCriteria(ctx, criteria)
	if err != nil {
		return Result{}, err
	}

	itemTexts := make([]string, len(items))
	for i, it := range items {
		itemTexts[i] = it.Text
	}
	itemRes, err := s.embed.BatchEmbed(ctx, itemTexts)
	if err != nil {
		return Result{}, fmt.Errorf("vectorize items: %w", err)
	}
	if len(itemRes.Embeddings) != len(items) {
		return Result{}, fmt.Errorf("%w: provider returned %d vectors for %d items",
			domain.ErrEmbeddingProviderError, len(itemRes.Embeddings), len(items))
	}

	assignments := make([]domain.BucketAssignment, 0, len(items))
	buckets := make(map[string][]string, len(criteria)+1)
	for _, c := range criteria {
		buckets[c.Name] = []string{}
	}
	buckets[domain.UngroupedBucket] = []string{}

	for i, it := range items {
		name, score := s.assign(itemRes.Embeddings[i], criteria, critVecs)
		buckets[name] = append(buckets[name], it.ID)
		assignments = append(assignments, domain.BucketAssignment{
			ItemID: it.ID,
			Text:   it.Text,
			Bucket: name,
			Score:  score,
		})
	}

	log.Info("bucket run complete",
		zap.Int("ungrouped", len(buckets[domain.UngroupedBucket])),
		zap.Int("tokens", itemRes.TotalTokens),
	)

	return Result{RunID: runID, Buckets: buckets, Assignments: assignments}, nil
}

// resolveCriteria validates request criteria or falls back to the
// market templates.
func (s *Service) resolveCriteria(criteria []domain.BucketCriterion, market string) ([]domain.BucketCriterion, error) {
	if len(criteria) == 0 {
		if market == "" {
			market = s.defaultMarket
		}
		criteria = s.markets[market]
		if len(criteria) == 0 {
			return nil, fmt.Errorf("%w: no criteria given and no templates for market %q", domain.ErrValidation, market)
		}
		return criteria, nil
	}

	seen := make(map[string]struct{}, len(criteria))
	for i, c := range criteria {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("%w: criterion %d has empty name", domain.ErrValidation, i)
		}
		if c.Name == domain.UngroupedBucket {
			return nil, fmt.Errorf("%w: bucket name %q is reserved", domain.ErrValidation, domain.UngroupedBucket)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate bucket name %q", domain.ErrValidation, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return criteria, nil
}

func (s *Service) embedCriteria(ctx context.Context, criteria []domain.BucketCriterion) ([][]float32, error) {
	texts := make([]string, len(criteria))
	for i, c := range criteria {
		if c.Description != "" {
			texts[i] = c.Description
		} else {
			texts[i] = c.Name
		}
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize criteria: %w", err)
	}
	if len(res.Embeddings) != len(criteria) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d criteria",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(criteria))
	}
	return res.Embeddings, nil
}

// assign picks the nearest criterion by cosine similarity, or the
// ungrouped bucket when the best score misses the threshold.
func (s *Service) assign(vec []float32, criteria []domain.BucketCriterion, critVecs [][]float32) (string, float64) {
	best := -1
	bestScore := -1.0
	for i, cv := range critVecs {
		sim, err := domain.CosineSimilarity(vec, cv)
		if err != nil {
			continue
		}
		if sim > bestScore {
			best = i
			bestScore = sim
		}
	}

	if best < 0 || bestScore < s.threshold {
		return domain.UngroupedBucket, bestScore
	}
	return criteria[best].Name, bestScore
}
