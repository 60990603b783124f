package docprep_test

import (
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/docprep"
)

var _ = Describe("Docprep", func() {
	Describe("FromRows", func() {
		rows := []docprep.Row{
			{"headline": "Rates rise", "company": "ACME Corp", "date": "2024-03-01", "sector": "Finance"},
			{"headline": "Chips rally", "company": "NanoFab", "date": "2024-03-02"},
		}

		It("builds one document per row with the text field as content", func() {
			docs := docprep.FromRows(rows, "headline", []string{"company", "date", "sector"})
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Content).To(Equal("Rates rise"))
			Expect(docs[1].Content).To(Equal("Chips rally"))
		})

		It("copies requested metadata and records the source row", func() {
			docs := docprep.FromRows(rows, "headline", []string{"company", "date", "sector"})
			Expect(docs[0].Metadata).To(HaveKeyWithValue("company", "ACME Corp"))
			Expect(docs[0].Metadata).To(HaveKeyWithValue("source_row", "0"))
			Expect(docs[1].Metadata).To(HaveKeyWithValue("source_row", "1"))
		})

		It("omits metadata fields missing from the row", func() {
			docs := docprep.FromRows(rows, "headline", []string{"company", "sector"})
			Expect(docs[1].Metadata).NotTo(HaveKey("sector"))
		})
	})

	Describe("SplitDocuments", func() {
		It("copies parent metadata onto every chunk with a chunk index", func() {
			doc := docprep.Document{
				Content:  strings.Repeat("sentence one. ", 30),
				Metadata: map[string]string{"company": "ACME Corp", "source_row": "0"},
			}
			chunks := docprep.SplitDocuments([]docprep.Document{doc}, docprep.NewSplitter(100, 20))
			Expect(len(chunks)).To(BeNumerically(">", 1))
			for i, c := range chunks {
				Expect(c.Metadata).To(HaveKeyWithValue("company", "ACME Corp"))
				Expect(c.Metadata["chunk"]).To(Equal(strconv.Itoa(i)))
			}
		})

		It("does not share metadata maps between chunks", func() {
			doc := docprep.Document{
				Content:  strings.Repeat("text ", 100),
				Metadata: map[string]string{"source_row": "0"},
			}
			chunks := docprep.SplitDocuments([]docprep.Document{doc}, docprep.NewSplitter(100, 20))
			chunks[0].Metadata["company"] = "mutated"
			Expect(chunks[1].Metadata).NotTo(HaveKey("company"))
		})
	})

	Describe("ChunkID", func() {
		It("derives a stable id from source row and chunk index", func() {
			c := docprep.Chunk{Metadata: map[string]string{"source_row": "3", "chunk": "1"}}
			Expect(docprep.ChunkID(c)).To(Equal("row3-chunk1"))
		})
	})
})
