package extractors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// PDFExtractor pulls the text layer out of PDF files.
// Scanned PDFs without a text layer fail with domain.ErrExtractionFailed.
type PDFExtractor struct{}

// Extract returns the plain text of every page, one page per line group.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", extractionError("pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError("pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", extractionError("pdf", fmt.Errorf("page %d: %w", i, err))
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	text = strings.TrimSpace(normaliseNewlines(b.String()))
	if text == "" {
		return "", extractionError("pdf", errors.New("no text extracted"))
	}
	return text, nil
}

func (e *PDFExtractor) SupportedTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}
