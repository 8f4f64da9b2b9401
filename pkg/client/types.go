package client

// SearchFilters narrows a semantic search by catalog metadata.
type SearchFilters struct {
	ContentTypes []string `json:"content_types,omitempty"`
	Country      string   `json:"country,omitempty"`
	Monetization []string `json:"monetization,omitempty"`
}

// SearchRequest is the input for SearchSemantic.
type SearchRequest struct {
	Query          string         `json:"query"`
	TopK           *int           `json:"top_k,omitempty"`
	ScoreThreshold *float64       `json:"score_threshold,omitempty"`
	Filters        *SearchFilters `json:"filters,omitempty"`
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

// SearchResponse is the output of SearchSemantic. The server echoes the
// query and applied filters back with the results.
type SearchResponse struct {
	Query          string             `json:"query"`
	FiltersApplied SearchFilters      `json:"filters_applied"`
	TotalResults   int                `json:"total_results"`
	Results        []SearchResultItem `json:"results"`
}

// BucketRequest is the input for GenerateBuckets. Criteria maps bucket
// name to a descriptive query; when empty the server's market templates
// apply.
type BucketRequest struct {
	Items    []string          `json:"items"`
	Criteria map[string]string `json:"criteria,omitempty"`
	Market   string            `json:"market,omitempty"`
}

// BucketAssignment reports where one item landed.
type BucketAssignment struct {
	ItemID string  `json:"item_id"`
	Bucket string  `json:"bucket"`
	Score  float64 `json:"score"`
}

// BucketResponse maps bucket names to assigned item ids. Item ids are
// the zero-based positions of the request items.
type BucketResponse struct {
	RunID       string              `json:"run_id"`
	Buckets     map[string][]string `json:"buckets"`
	Assignments []BucketAssignment  `json:"assignments"`
}

// HealthResponse is the output of Health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ProbeResultItem is one probe hit in a test response.
type ProbeResultItem struct {
	PodcastID string  `json:"podcast_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
}

// TestResponse is the output of Test.
type TestResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	ProbeQuery string            `json:"probe_query"`
	IndexSize  int               `json:"index_size"`
	Results    []ProbeResultItem `json:"results,omitempty"`
}
