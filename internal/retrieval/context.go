package retrieval

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// UnknownDocument names a chunk whose document record is missing
	UnknownDocument = "Unknown Document"

	// PreviewLength is the number of characters kept in a source preview
	PreviewLength = 200

	contextPreamble = "Based on the following relevant information from the company documents:\n\n"
)

// Assembly is the context block handed to the generator and the matching
// source citations, in the same order.
type Assembly struct {
	Context string
	Sources []domain.SourceCitation
}

// Assemble builds the labelled context block and the source list for the
// ranked chunks. documents is keyed by document ID.
func Assemble(ranked []domain.RankedChunk, documents map[string]*domain.Document) Assembly {
	var b strings.Builder
	b.WriteString(contextPreamble)

	sources := make([]domain.SourceCitation, 0, len(ranked))
	for i, r := range ranked {
		name := documentName(documents, r.Chunk.DocumentID)

		b.WriteString(sourceMarker(i+1, name, r.Chunk.Metadata.PossibleHeader))
		b.WriteString("\n")
		b.WriteString(r.Chunk.Content)
		b.WriteString("\n\n")

		sources = append(sources, domain.SourceCitation{
			DocumentID:   r.Chunk.DocumentID,
			DocumentName: name,
			ChunkID:      r.Chunk.ID,
			Relevance:    max(r.Score, 0),
			Content:      Preview(r.Chunk.Content, PreviewLength),
			Metadata:     r.Chunk.Metadata,
		})
	}

	return Assembly{Context: b.String(), Sources: sources}
}

// IndexDocuments keys documents by ID for Assemble.
func IndexDocuments(docs []*domain.Document) map[string]*domain.Document {
	index := make(map[string]*domain.Document, len(docs))
	for _, doc := range docs {
		index[doc.ID] = doc
	}
	return index
}

// Preview returns the first n characters of s followed by "...".
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

func documentName(documents map[string]*domain.Document, id string) string {
	if doc, ok := documents[id]; ok && doc != nil && doc.Name != "" {
		return doc.Name
	}
	return UnknownDocument
}

func sourceMarker(n int, name, header string) string {
	if header == "" {
		return fmt.Sprintf("[Source %d: %s]", n, name)
	}
	return fmt.Sprintf("[Source %d: %s - %s]", n, name, header)
}
