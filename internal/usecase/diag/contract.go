package diag

import (
	"context"

	"github.com/myuzeplay/playsearch/internal/domain"
)

// Embedder vectorizes the probe query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository runs the probe search and reads the index size.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, f domain.Filter, topK int) ([]domain.Hit, error)
	Count(ctx context.Context) (int, error)
}
