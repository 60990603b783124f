package docprep_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/docprep"
)

// reconstruct concatenates the non-overlap region of every piece.
func reconstruct(pieces []docprep.Piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.Text[p.Overlap:])
	}
	return b.String()
}

var _ = Describe("Splitter", func() {
	var splitter *docprep.Splitter

	BeforeEach(func() {
		splitter = docprep.NewSplitter(100, 20)
	})

	Describe("Split", func() {
		It("returns nothing for empty input", func() {
			Expect(splitter.Split("")).To(BeEmpty())
		})

		It("returns a single piece when text fits in one chunk", func() {
			pieces := splitter.Split("short text")
			Expect(pieces).To(HaveLen(1))
			Expect(pieces[0].Text).To(Equal("short text"))
			Expect(pieces[0].Overlap).To(BeZero())
		})

		It("keeps every piece within the chunk size", func() {
			text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
			pieces := splitter.Split(text)
			Expect(len(pieces)).To(BeNumerically(">", 1))
			for _, p := range pieces {
				Expect(len(p.Text)).To(BeNumerically("<=", 100))
			}
		})

		It("shrinks the overlap for units near the chunk size", func() {
			// 90-char sentences: each fills a chunk on its own and leaves no
			// room for the full 20-char overlap prefix.
			sentence := strings.Repeat("x", 88) + ". "
			text := strings.Repeat(sentence, 3)
			pieces := splitter.Split(text)
			Expect(pieces).To(HaveLen(3))
			for _, p := range pieces {
				Expect(len(p.Text)).To(BeNumerically("<=", 100))
			}
			for i := 1; i < len(pieces); i++ {
				p := pieces[i]
				Expect(p.Overlap).To(Equal(10))
				Expect(pieces[i-1].Text).To(HaveSuffix(p.Text[:p.Overlap]))
			}
			Expect(reconstruct(pieces)).To(Equal(text))
		})

		It("reconstructs the original text from non-overlap regions", func() {
			text := strings.Repeat("alpha beta gamma delta epsilon. ", 30)
			pieces := splitter.Split(text)
			Expect(reconstruct(pieces)).To(Equal(text))
		})

		It("prefers paragraph breaks over finer separators", func() {
			para := strings.Repeat("x", 60)
			text := para + "\n\n" + para
			pieces := splitter.Split(text)
			Expect(pieces).To(HaveLen(2))
			Expect(pieces[0].Text).To(Equal(para + "\n\n"))
		})

		It("repeats trailing characters of each chunk in the next", func() {
			text := strings.Repeat("word ", 100)
			pieces := splitter.Split(text)
			Expect(len(pieces)).To(BeNumerically(">", 1))
			for i := 1; i < len(pieces); i++ {
				p := pieces[i]
				Expect(p.Overlap).To(BeNumerically(">", 0))
				prev := pieces[i-1].Text
				Expect(prev).To(HaveSuffix(p.Text[:p.Overlap]))
			}
		})

		It("hard-slices text with no separators at all", func() {
			text := strings.Repeat("a", 350)
			pieces := splitter.Split(text)
			for _, p := range pieces {
				Expect(len(p.Text)).To(BeNumerically("<=", 100))
			}
			Expect(reconstruct(pieces)).To(Equal(text))
		})

		It("preserves whitespace-heavy text exactly", func() {
			text := "one\n\ntwo\nthree. four five   six\n\n" + strings.Repeat("seven ", 50)
			pieces := splitter.Split(text)
			Expect(reconstruct(pieces)).To(Equal(text))
		})
	})

	Describe("NewSplitter", func() {
		It("applies defaults for zero values", func() {
			s := docprep.NewSplitter(0, -1)
			Expect(s.ChunkSize).To(Equal(docprep.DefaultChunkSize))
			Expect(s.ChunkOverlap).To(Equal(docprep.DefaultChunkOverlap))
		})

		It("clamps overlap below the chunk size", func() {
			s := docprep.NewSplitter(50, 80)
			Expect(s.ChunkOverlap).To(BeNumerically("<", s.ChunkSize))
		})
	})
})
