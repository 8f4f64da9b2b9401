package domain

import (
	"fmt"
	"strings"
)

// QueryDefaults supplies config-driven bounds for query construction.
type QueryDefaults struct {
	TopK           int
	MaxTopK        int
	ScoreThreshold float64
}

// Query is a validated semantic search request.
type Query struct {
	text           string
	topK           int
	scoreThreshold float64
	filter         Filter
}

// NewQuery validates and creates a Query. topK <= 0 and scoreThreshold < 0
// mean "not provided" and take the configured defaults.
func NewQuery(text string, topK int, scoreThreshold float64, filter Filter, d QueryDefaults) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("%w: query text is required", ErrValidation)
	}
	if topK <= 0 {
		topK = d.TopK
	}
	if topK > d.MaxTopK {
		return Query{}, fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrValidation, d.MaxTopK, topK)
	}
	if scoreThreshold < 0 {
		scoreThreshold = d.ScoreThreshold
	}
	if scoreThreshold > 1 {
		return Query{}, fmt.Errorf("%w: score_threshold must be in [0, 1], got %g", ErrValidation, scoreThreshold)
	}
	return Query{
		text:           text,
		topK:           topK,
		scoreThreshold: scoreThreshold,
		filter:         filter,
	}, nil
}

// Text returns the query text.
func (q Query) Text() string { return q.text }

// TopK returns the result count bound.
func (q Query) TopK() int { return q.topK }

// ScoreThreshold returns the minimum similarity score.
func (q Query) ScoreThreshold() float64 { return q.scoreThreshold }

// Filter returns the metadata filter.
func (q Query) Filter() Filter { return q.filter }
