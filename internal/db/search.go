package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Distance     DistanceMetric
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is the raw distance reported by the
// backend for the query's metric: lower is closer.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
