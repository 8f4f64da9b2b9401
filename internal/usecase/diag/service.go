// Package diag exercises the full request path end to end: embed a
// fixed probe query, run it through the vector index, and read the
// index size. Failures are reported per component instead of failing
// the whole report, so a broken provider and a broken store are
// distinguishable from one probe.
package diag

import (
	"context"

	"github.com/myuzeplay/playsearch/internal/domain"
)

// probeTopK bounds the probe search to a handful of hits.
const probeTopK = 3

// Status summarizes the wiring probe outcome.
type Status string

const (
	// OK indicates every component answered.
	OK Status = "ok"
	// Error indicates at least one component failed.
	Error Status = "error"
)

// ProbeHit is one result from the probe search.
type ProbeHit struct {
	PodcastID string
	Title     string
	Score     float64
}

// Report is the outcome of a full wiring probe.
type Report struct {
	Status     Status
	Checks     map[string]string
	ProbeQuery string
	IndexSize  int
	Hits       []ProbeHit
}

// Service runs end-to-end wiring probes.
type Service struct {
	embed      Embedder
	repo       Repository
	probeQuery string
}

// New creates a diagnostics service with a fixed probe query.
func New(embed Embedder, repo Repository, probeQuery string) *Service {
	return &Service{embed: embed, repo: repo, probeQuery: probeQuery}
}

// Run probes the embedding provider and the vector store.
func (s *Service) Run(ctx context.Context) Report {
	report := Report{
		Status:     OK,
		Checks:     make(map[string]string),
		ProbeQuery: s.probeQuery,
	}

	if n, err := s.repo.Count(ctx); err != nil {
		report.Status = Error
		report.Checks["vector_store"] = err.Error()
	} else {
		report.Checks["vector_store"] = "ok"
		report.IndexSize = n
	}

	embResult, err := s.embed.Embed(ctx, s.probeQuery)
	if err != nil {
		report.Status = Error
		report.Checks["embedding"] = err.Error()
		return report
	}
	report.Checks["embedding"] = "ok"

	hits, err := s.repo.SearchKNN(ctx, embResult.Embedding, domain.Filter{}, probeTopK)
	if err != nil {
		report.Status = Error
		report.Checks["search"] = err.Error()
		return report
	}
	report.Checks["search"] = "ok"

	report.Hits = make([]ProbeHit, 0, len(hits))
	for _, h := range hits {
		report.Hits = append(report.Hits, ProbeHit{
			PodcastID: h.Entry.PodcastID,
			Title:     h.Entry.Title,
			Score:     h.Score,
		})
	}

	return report
}
