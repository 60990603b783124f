package vector

import "errors"

var (
	// ErrNotInitialized is returned when a similarity query is issued
	// before any documents were added.
	ErrNotInitialized = errors.New("vector index not initialized")

	// ErrNotFound is returned when a document is not found in the vector store.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
