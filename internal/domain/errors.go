package domain

import "errors"

var (
	// ErrResourceUnavailable signals that a retrieval dependency (index, dataset, provider) is missing or down.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrIndexNotFound signals that the vector index has not been built yet.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrInvalidQuery signals an empty or oversized query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidMaxSteps signals a roadmap request with fewer than one step.
	ErrInvalidMaxSteps = errors.New("max steps must be at least 1")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// KeyPrefix namespaces every key the service writes to the vector store.
const KeyPrefix = "learnora:"
