package db

import "github.com/kailas-cloud/docinsight/internal/domain/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery enumerates indexed entries without ranking.
type ListQuery struct {
	IndexName    string
	KeyPrefix    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search. Score is cosine similarity for KNN hits.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
