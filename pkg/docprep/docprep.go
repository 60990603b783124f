// Package docprep converts tabular records into text documents and splits
// them into bounded chunks for embedding and retrieval.
package docprep

import (
	"fmt"
	"strconv"
)

// Document is a unit of source text with attached metadata, produced from a
// single tabular row. Immutable once created.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Chunk is a bounded-length slice of a Document's content. Each chunk keeps a
// copy of the parent metadata plus a source-row reference.
type Chunk struct {
	Content  string
	Metadata map[string]string

	// Overlap is the number of leading characters repeated from the
	// previous chunk of the same document. Zero for the first chunk.
	Overlap int
}

// Row is a single tabular record with string-coercible fields.
type Row map[string]string

// FromRows creates one Document per row. The designated text field becomes
// the content; metadata fields are copied verbatim as strings, plus a
// source_row index.
func FromRows(rows []Row, textField string, metaFields []string) []Document {
	docs := make([]Document, 0, len(rows))
	for idx, row := range rows {
		metadata := map[string]string{
			"source_row": strconv.Itoa(idx),
		}
		for _, field := range metaFields {
			if v, ok := row[field]; ok {
				metadata[field] = v
			}
		}
		docs = append(docs, Document{
			Content:  row[textField],
			Metadata: metadata,
		})
	}
	return docs
}

// SplitDocuments splits each document with the given splitter, copying the
// parent metadata onto every chunk along with its index within the document.
func SplitDocuments(docs []Document, splitter *Splitter) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		for i, piece := range splitter.Split(doc.Content) {
			metadata := make(map[string]string, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["chunk"] = strconv.Itoa(i)
			chunks = append(chunks, Chunk{
				Content:  piece.Text,
				Metadata: metadata,
				Overlap:  piece.Overlap,
			})
		}
	}
	return chunks
}

// ChunkID derives a stable document ID for a chunk from its source metadata.
func ChunkID(c Chunk) string {
	return fmt.Sprintf("row%s-chunk%s", c.Metadata["source_row"], c.Metadata["chunk"])
}
