// Package memindex provides an in-memory exact-search vector driver.
//
// At the target data sizes (hundreds to low thousands of chunks) a linear
// cosine scan is faster than any approximate index and needs no external
// service. The index is read-mostly after initial load: Add takes the write
// lock, Query takes the read lock, so concurrent request handlers never
// block each other.
package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/vector"
)

// Index implements vector.Driver with exact cosine similarity search.
type Index struct {
	mu     sync.RWMutex
	docs   []vector.Document
	byID   map[string]int
	logger *zap.Logger
}

// NewIndex creates an empty in-memory index. A nil logger is replaced with
// a nop logger.
func NewIndex(logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		byID:   make(map[string]int),
		logger: logger,
	}
}

// Add stores documents, normalizing embeddings that are not unit-length.
// Documents with a known ID replace the existing entry in place, preserving
// insertion order for tie-breaks.
func (i *Index) Add(_ context.Context, docs []vector.Document) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, doc := range docs {
		doc.Embedding = normalize(doc.Embedding)
		if pos, ok := i.byID[doc.ID]; ok {
			i.docs[pos] = doc
			continue
		}
		i.byID[doc.ID] = len(i.docs)
		i.docs = append(i.docs, doc)
	}

	i.logger.Debug("documents indexed",
		zap.Int("added", len(docs)),
		zap.Int("total", len(i.docs)),
	)
	return nil
}

// Query returns the topK most similar documents by cosine similarity,
// descending. Equal scores keep insertion order.
func (i *Index) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.docs) == 0 {
		return nil, vector.ErrNotInitialized
	}
	if topK <= 0 {
		topK = 5
	}

	query := normalize(embedding)
	results := make([]vector.QueryResult, 0, len(i.docs))
	for _, doc := range i.docs {
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    dot(query, doc.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs), nil
}

// Close releases resources. The in-memory index holds none.
func (i *Index) Close() error {
	return nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize returns a unit-length copy of v. Vectors already normalized by
// the embedding model pass through unchanged.
func normalize(v []float32) []float32 {
	var sumsq float64
	for _, x := range v {
		sumsq += float64(x) * float64(x)
	}
	if sumsq == 0 {
		return v
	}
	norm := math.Sqrt(sumsq)
	if math.Abs(norm-1) < 1e-6 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

var _ vector.Driver = (*Index)(nil)
