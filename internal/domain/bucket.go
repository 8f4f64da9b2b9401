package domain

// UngroupedBucket is the reserved bucket receiving items whose best
// similarity falls below the assignment threshold.
const UngroupedBucket = "ungrouped"

// BucketCriterion is a named grouping target with a descriptive query.
type BucketCriterion struct {
	Name        string
	Description string
}

// BucketItem is one input item with a positional identifier, so duplicate
// texts keep per-occurrence identity.
type BucketItem struct {
	ID   string
	Text string
}

// BucketAssignment records where a single item landed and how strongly.
type BucketAssignment struct {
	ItemID string
	Text   string
	Bucket string
	Score  float64
}
