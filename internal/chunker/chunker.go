// Package chunker splits extracted document text into overlapping windows
// and annotates each window with lightweight metadata.
package chunker

import (
	"iter"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Config configures the chunker behavior.
type Config struct {
	// Size is the window length in characters
	Size int

	// Overlap is the number of characters shared by consecutive windows
	Overlap int

	// BreakRatio is the fraction of the window after which a sentence
	// or line boundary may be used as the cut point
	BreakRatio float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Size:       1000,
		Overlap:    200,
		BreakRatio: 0.7,
	}
}

// Chunker splits text into overlapping chunks.
// It holds no mutable state and is safe for concurrent use.
type Chunker struct {
	config Config
}

// New creates a chunker, falling back to defaults for unusable values.
func New(config Config) *Chunker {
	def := DefaultConfig()
	if config.Size <= 0 {
		config.Size = def.Size
	}
	if config.Overlap < 0 || config.Overlap >= config.Size {
		config.Overlap = 0
	}
	if config.BreakRatio <= 0 || config.BreakRatio >= 1 {
		config.BreakRatio = def.BreakRatio
	}
	return &Chunker{config: config}
}

// Config returns the effective configuration.
func (c *Chunker) Config() Config {
	return c.config
}

// Windows returns a lazy sequence of trimmed, non-empty chunks.
// The sequence can be ranged over any number of times.
func (c *Chunker) Windows(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		n := len(runes)
		size := c.config.Size

		for start := 0; start < n; {
			end := start + size
			if end < n {
				if bp := c.findBreakPoint(runes, start, end); bp >= 0 {
					end = bp + 1
				}
			}

			chunk := strings.TrimSpace(string(runes[start:min(end, n)]))
			if chunk != "" && !yield(chunk) {
				return
			}

			// The remaining text is already covered by this window
			if end >= n {
				return
			}

			next := end - c.config.Overlap
			if next <= start {
				next = end
			}
			start = next
		}
	}
}

// Split collects Windows into a slice.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	for chunk := range c.Windows(text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// findBreakPoint returns the index of the last '.' or '\n' inside the
// window that falls in its trailing part, or -1 when there is none.
func (c *Chunker) findBreakPoint(runes []rune, start, end int) int {
	minBreak := start + int(math.Ceil(c.config.BreakRatio*float64(c.config.Size)-1e-9))
	for i := end - 1; i >= minBreak; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// Chunk splits a document's text into domain chunks with contiguous
// indices starting at 0. Embeddings are left empty.
func (c *Chunker) Chunk(documentID, fileName, text string) []*domain.Chunk {
	var chunks []*domain.Chunk
	now := time.Now()
	for content := range c.Windows(text) {
		index := len(chunks)
		chunks = append(chunks, &domain.Chunk{
			ID:         domain.GenerateID(),
			DocumentID: documentID,
			Index:      index,
			Content:    content,
			Metadata:   ExtractMetadata(content, index, fileName),
			CreatedAt:  now,
		})
	}
	return chunks
}
