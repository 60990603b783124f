// Package worker provides an asynchronous worker pool for embedding and
// indexing document chunks.
//
// The pool decouples index population from the API's HTTP hot path: the
// server answers requests while seeded documents embed in the background.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/docprep"
	"github.com/finsightco/finsight/pkg/embeddings"
	"github.com/finsightco/finsight/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a batch of chunks for the worker pool to embed and index.
type Job struct {
	Chunks []docprep.Chunk
}

// Config is the configuration options for the worker pool.
type Config struct {
	// VectorDriver receives the embedded documents.
	VectorDriver vector.Driver

	// Embedder generates the chunk embeddings.
	Embedder embeddings.Embedder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool embeds and indexes chunk batches asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.VectorDriver == nil || c.Embedder == nil {
		return nil, fmt.Errorf("worker: vector driver and embedder are required")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", zap.Int("chunks", len(job.Chunks)))
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.Int("chunks", len(job.Chunks)),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("index worker stopped", zap.Uint("worker_id", id))
}

// processJob embeds each chunk in the batch and adds the resulting documents
// to the vector driver. Errors are logged, not returned: a failed chunk is
// skipped rather than blocking the batch.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	docs := make([]vector.Document, 0, len(job.Chunks))
	for _, chunk := range job.Chunks {
		if chunk.Content == "" {
			continue
		}

		embedding, err := p.config.Embedder.Embed(ctx, chunk.Content)
		if err != nil {
			p.logger.Warn("failed to generate embedding",
				zap.String("chunk", docprep.ChunkID(chunk)),
				zap.Error(err),
			)
			continue
		}

		docs = append(docs, vector.Document{
			ID:        docprep.ChunkID(chunk),
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: embedding,
		})
	}

	if len(docs) == 0 {
		return
	}

	if err := p.config.VectorDriver.Add(ctx, docs); err != nil {
		p.logger.Error("failed to index batch",
			zap.Int("documents", len(docs)),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("indexed batch", zap.Int("documents", len(docs)))
}
