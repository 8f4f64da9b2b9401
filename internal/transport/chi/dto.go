package chi

import (
	"sort"
	"strconv"

	"github.com/myuzeplay/playsearch/internal/domain"
	bucketuc "github.com/myuzeplay/playsearch/internal/usecase/bucket"
	diaguc "github.com/myuzeplay/playsearch/internal/usecase/diag"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeUnauthorized           = "unauthorized"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeVectorStoreError       = "vector_store_error"
	codeInternalError          = "internal_error"
)

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchFilters narrows a semantic search by catalog metadata.
type SearchFilters struct {
	ContentTypes []string `json:"content_types,omitempty"`
	Country      string   `json:"country,omitempty"`
	Monetization []string `json:"monetization,omitempty"`
}

// SearchRequest is the body of POST /v1/search/semantic.
// "query" and "text" are aliases; "query" wins when both are set.
type SearchRequest struct {
	Query          string         `json:"query"`
	Text           string         `json:"text"`
	TopK           *int           `json:"top_k,omitempty"`
	ScoreThreshold *float64       `json:"score_threshold,omitempty"`
	Filters        *SearchFilters `json:"filters,omitempty"`
}

// QueryText resolves the query/text alias.
func (r SearchRequest) QueryText() string {
	if r.Query != "" {
		return r.Query
	}
	return r.Text
}

// SearchResultItem is one hit in a search response.
type SearchResultItem struct {
	PodcastID      string   `json:"podcast_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	ContentType    string   `json:"ptype,omitempty"`
	Language       []string `json:"language,omitempty"`
	Category       string   `json:"category,omitempty"`
	CategoryLevels []string `json:"category_levels,omitempty"`
	Zones          []string `json:"zoneid,omitempty"`
	IsBillable     string   `json:"is_billable,omitempty"`
	EpisodeCount   int      `json:"episode_count,omitempty"`
	AddedOn        string   `json:"added_on,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
	Score          float64  `json:"score"`
}

// SearchResponse is the body of a successful search. The request query
// and filters are echoed back alongside the results.
type SearchResponse struct {
	Query          string             `json:"query"`
	FiltersApplied SearchFilters      `json:"filters_applied"`
	TotalResults   int                `json:"total_results"`
	Results        []SearchResultItem `json:"results"`
}

// BucketRequest is the body of POST /v1/buckets/generate. Criteria maps
// bucket name to a descriptive query; when empty the configured market
// templates apply.
type BucketRequest struct {
	Items    []string          `json:"items"`
	Criteria map[string]string `json:"criteria,omitempty"`
	Market   string            `json:"market,omitempty"`
}

// BucketAssignmentItem reports where one item landed.
type BucketAssignmentItem struct {
	ItemID string  `json:"item_id"`
	Bucket string  `json:"bucket"`
	Score  float64 `json:"score"`
}

// BucketResponse maps bucket names to the item ids assigned to them.
// Item ids are the zero-based positions of the request items.
type BucketResponse struct {
	RunID       string                 `json:"run_id"`
	Buckets     map[string][]string    `json:"buckets"`
	Assignments []BucketAssignmentItem `json:"assignments"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// TestResponse is the body of GET /test.
type TestResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	ProbeQuery string            `json:"probe_query"`
	IndexSize  int               `json:"index_size"`
	Results    []ProbeResultItem `json:"results,omitempty"`
}

// ProbeResultItem is one probe hit in a test response.
type ProbeResultItem struct {
	PodcastID string  `json:"podcast_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
}

func filterFromDTO(f *SearchFilters) domain.Filter {
	if f == nil {
		return domain.Filter{}
	}
	return domain.Filter{
		ContentTypes: f.ContentTypes,
		Country:      f.Country,
		Monetization: f.Monetization,
	}
}

func hitToDTO(h domain.Hit) SearchResultItem {
	return SearchResultItem{
		PodcastID:      h.Entry.PodcastID,
		Title:          h.Entry.Title,
		Description:    h.Entry.Description,
		ContentType:    h.Entry.ContentType,
		Language:       h.Entry.Language,
		Category:       h.Entry.Category,
		CategoryLevels: h.Entry.CategoryLevels,
		Zones:          h.Entry.Zones,
		IsBillable:     h.Entry.IsBillable,
		EpisodeCount:   h.Entry.EpisodeCount,
		AddedOn:        h.Entry.AddedOn,
		UpdatedAt:      h.Entry.UpdatedAt,
		Score:          h.Score,
	}
}

// bucketItemsFromDTO assigns positional ids so duplicate texts keep
// per-occurrence identity.
func bucketItemsFromDTO(texts []string) []domain.BucketItem {
	items := make([]domain.BucketItem, len(texts))
	for i, t := range texts {
		items[i] = domain.BucketItem{ID: strconv.Itoa(i), Text: t}
	}
	return items
}

// criteriaFromDTO converts the name->description map into criteria
// sorted by name for deterministic runs.
func criteriaFromDTO(m map[string]string) []domain.BucketCriterion {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.BucketCriterion, len(names))
	for i, name := range names {
		out[i] = domain.BucketCriterion{Name: name, Description: m[name]}
	}
	return out
}

func bucketResultToDTO(res bucketuc.Result) BucketResponse {
	assignments := make([]BucketAssignmentItem, len(res.Assignments))
	for i, a := range res.Assignments {
		assignments[i] = BucketAssignmentItem{
			ItemID: a.ItemID,
			Bucket: a.Bucket,
			Score:  a.Score,
		}
	}
	return BucketResponse{
		RunID:       res.RunID,
		Buckets:     res.Buckets,
		Assignments: assignments,
	}
}

func diagReportToDTO(report diaguc.Report) TestResponse {
	results := make([]ProbeResultItem, len(report.Hits))
	for i, h := range report.Hits {
		results[i] = ProbeResultItem{
			PodcastID: h.PodcastID,
			Title:     h.Title,
			Score:     h.Score,
		}
	}
	return TestResponse{
		Status:     string(report.Status),
		Checks:     report.Checks,
		ProbeQuery: report.ProbeQuery,
		IndexSize:  report.IndexSize,
		Results:    results,
	}
}
