package search

import (
	"context"

	"github.com/myuzeplay/playsearch/internal/domain"
)

// Repository defines the storage contract for catalog search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, f domain.Filter, topK int) ([]domain.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
