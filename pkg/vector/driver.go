// Package vector provides interfaces and implementations for vector storage
// and similarity retrieval over document chunks.
package vector

import "context"

// Document represents a stored chunk with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Content is the chunk text that was embedded.
	Content string

	// Metadata carries the source row's fields (company, date, sector, ...)
	// copied verbatim as strings.
	Metadata map[string]string

	// Embedding is the vector representation of Content. Never mutated
	// after creation.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score is the cosine similarity to the query (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings. Documents with an
	// existing ID are updated.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding,
	// ordered by descending score. Querying a driver that holds no
	// documents returns ErrNotInitialized.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}
