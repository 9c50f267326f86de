package extractors

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const utf8BOM = "\ufeff"

// TextExtractor reads plain UTF-8 text.
type TextExtractor struct{}

// Extract decodes the bytes as UTF-8, replacing invalid sequences.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	s = strings.TrimPrefix(s, utf8BOM)
	return normaliseNewlines(s), nil
}

func (e *TextExtractor) SupportedTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeTXT}
}

func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
