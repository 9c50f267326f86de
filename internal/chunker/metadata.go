package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxHeaderLength is the exclusive upper bound for a leading line to count as a header
const maxHeaderLength = 100

// contentRules are checked in order; the first rule with a matching keyword wins.
var contentRules = []struct {
	contentType domain.ContentType
	keywords    []string
}{
	{domain.ContentTypeFAQ, []string{"FAQ", "Question:", "Q:"}},
	{domain.ContentTypeInstructions, []string{"Step", "Instructions"}},
	{domain.ContentTypePricing, []string{"Price", "Cost", "$"}},
}

// ExtractMetadata derives counts, a possible header and a coarse content type from chunk text.
func ExtractMetadata(chunk string, index int, fileName string) domain.ChunkMetadata {
	meta := domain.ChunkMetadata{
		ChunkIndex: index,
		FileName:   fileName,
		WordCount:  len(strings.Fields(chunk)),
		CharCount:  utf8.RuneCountInString(chunk),
	}

	lines := strings.Split(chunk, "\n")
	firstLine := strings.TrimSpace(lines[0])
	if firstLine != "" && utf8.RuneCountInString(firstLine) < maxHeaderLength && len(lines) > 1 {
		meta.PossibleHeader = firstLine
	}

	meta.ContentType = DetectContentType(chunk)
	return meta
}

// DetectContentType classifies text by keyword. No match returns domain.ContentTypeNone.
func DetectContentType(text string) domain.ContentType {
	for _, rule := range contentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.contentType
			}
		}
	}
	return domain.ContentTypeNone
}
