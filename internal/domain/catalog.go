package domain

// Entry is the catalog metadata stored alongside each vector.
// Multi-valued fields (language, category_levels, zoneid) are stored
// comma-separated and split on read.
type Entry struct {
	PodcastID      string
	Title          string
	Description    string
	ContentType    string
	Language       []string
	Category       string
	CategoryLevels []string
	Zones          []string
	IsBillable     string
	EpisodeCount   int
	AddedOn        string
	UpdatedAt      string
}

// Hit is a single nearest-neighbor match from the vector store.
type Hit struct {
	Entry Entry
	Score float64
}
