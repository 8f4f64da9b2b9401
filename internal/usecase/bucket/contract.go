package bucket

import (
	"context"

	"github.com/myuzeplay/playsearch/internal/domain"
)

// Embedder vectorizes batches of text into embeddings.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
