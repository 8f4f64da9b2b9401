package domain

// ZoneWorldwide is the zone value matching entries available in every market.
const ZoneWorldwide = "WorldWide"

// Filter narrows a catalog search by metadata.
// Country matches entries tagged either with the country code or WorldWide.
type Filter struct {
	ContentTypes []string
	Country      string
	Monetization []string
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.ContentTypes) == 0 && f.Country == "" && len(f.Monetization) == 0
}
