package domain

import "errors"

var (
	// ErrValidation signals malformed or missing request input.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorStoreError signals a vector store failure.
	ErrVectorStoreError = errors.New("vector store error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
