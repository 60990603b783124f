package worker

import (
	"context"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/docprep"
	testutils "github.com/finsightco/finsight/pkg/utils/test"
	"github.com/finsightco/finsight/pkg/vector/memindex"
)

// newTestPool creates a worker pool backed by the in-memory index.
// Callers should wp.Close() to drain enqueued jobs before asserting state.
func newTestPool() (*Pool, *memindex.Index) {
	logger := zap.NewNop()
	index := memindex.NewIndex(nil)

	wp, err := NewPool(&Config{
		VectorDriver: index,
		Embedder:     testutils.NewMockEmbedder(),
		Logger:       logger,
	})
	Expect(err).NotTo(HaveOccurred())

	return wp, index
}

func chunkBatch(n int) []docprep.Chunk {
	chunks := make([]docprep.Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, docprep.Chunk{
			Content: "headline number " + strconv.Itoa(i),
			Metadata: map[string]string{
				"source_row": strconv.Itoa(i),
				"chunk":      "0",
			},
		})
	}
	return chunks
}

var _ = Describe("Worker Pool", func() {
	var (
		wp    *Pool
		index *memindex.Index
		ctx   context.Context
	)

	BeforeEach(func() {
		wp, index = newTestPool()
		ctx = context.Background()
	})

	It("requires a vector driver and embedder", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			ok := wp.Enqueue(Job{Chunks: chunkBatch(3)})
			Expect(ok).To(BeTrue())
			wp.Close()
		})

		It("returns false when the queue is full", func() {
			full, err := NewPool(&Config{
				VectorDriver: memindex.NewIndex(nil),
				Embedder:     testutils.NewMockEmbedder(),
				NumWorkers:   1,
				QueueSize:    1,
			})
			Expect(err).NotTo(HaveOccurred())

			// Saturate the queue; with one worker at most one job is
			// in-flight, so repeated enqueues eventually hit a full queue.
			dropped := false
			for i := 0; i < 100; i++ {
				if !full.Enqueue(Job{Chunks: chunkBatch(50)}) {
					dropped = true
					break
				}
			}
			Expect(dropped).To(BeTrue())
			full.Close()
		})
	})

	Describe("indexing", func() {
		It("embeds and indexes every chunk in a batch", func() {
			wp.Enqueue(Job{Chunks: chunkBatch(5)})
			wp.Close()

			count, err := index.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(5))
		})

		It("skips empty chunks", func() {
			chunks := chunkBatch(2)
			chunks = append(chunks, docprep.Chunk{Content: "", Metadata: map[string]string{}})
			wp.Enqueue(Job{Chunks: chunks})
			wp.Close()

			count, err := index.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		It("skips chunks whose embedding fails without dropping the batch", func() {
			embedder := testutils.NewMockEmbedder()
			embedder.FailOn = "headline number 1"

			pool, err := NewPool(&Config{
				VectorDriver: index,
				Embedder:     embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			pool.Enqueue(Job{Chunks: chunkBatch(3)})
			pool.Close()

			count, err := index.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		It("drains in-flight jobs on Close", func() {
			for i := 0; i < 10; i++ {
				wp.Enqueue(Job{Chunks: chunkBatch(2)})
			}
			wp.Close()

			count, err := index.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})
	})
})
