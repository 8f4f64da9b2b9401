// Package catalog reads the podcast catalog out of the vector store and
// maps flat hash fields into domain entries.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/myuzeplay/playsearch/internal/db"
	"github.com/myuzeplay/playsearch/internal/domain"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// returnFields are the hash fields fetched for each hit.
var returnFields = []string{
	"podcast_id", "title", "description", "ptype",
	"language", "category", "category_levels", "zoneid",
	"is_billable", "episode_count", "ADDED_ON", "updated_at",
	"__vector_score",
}

// Repo implements usecase/search.Repository over the FT index.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
}

// New creates a catalog repository bound to a single FT index.
func New(s store, indexName, keyPrefix string) *Repo {
	return &Repo{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// SearchKNN runs a vector similarity search and returns parsed hits in
// store order (closest first).
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, f domain.Filter, topK int) ([]domain.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Filter:       f,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn %s: %w", domain.ErrVectorStoreError, r.indexName, err)
	}

	return r.parseHits(sr), nil
}

// Count returns the total number of indexed catalog entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("%w: count %s: %w", domain.ErrVectorStoreError, r.indexName, err)
	}
	return n, nil
}

func (r *Repo) parseHits(sr *db.SearchResult) []domain.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	hits := make([]domain.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, domain.Hit{
			Entry: r.parseEntry(e),
			Score: e.Score,
		})
	}
	return hits
}

// parseEntry maps flat hash fields into a catalog entry. Multi-valued
// fields are stored comma-separated.
func (r *Repo) parseEntry(e db.SearchEntry) domain.Entry {
	entry := domain.Entry{
		PodcastID:      e.Fields["podcast_id"],
		Title:          e.Fields["title"],
		Description:    e.Fields["description"],
		ContentType:    e.Fields["ptype"],
		Language:       splitCSV(e.Fields["language"]),
		Category:       e.Fields["category"],
		CategoryLevels: splitCSV(e.Fields["category_levels"]),
		Zones:          splitCSV(e.Fields["zoneid"]),
		IsBillable:     e.Fields["is_billable"],
		AddedOn:        e.Fields["ADDED_ON"],
		UpdatedAt:      e.Fields["updated_at"],
	}

	if entry.PodcastID == "" {
		entry.PodcastID = strings.TrimPrefix(e.Key, r.keyPrefix)
	}
	if n, err := strconv.Atoi(e.Fields["episode_count"]); err == nil {
		entry.EpisodeCount = n
	}

	return entry
}

// splitCSV splits a comma-separated field, dropping empty segments.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
