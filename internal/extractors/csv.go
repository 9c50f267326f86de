package extractors

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// CSVExtractor renders CSV rows as "column: value" text so each row reads
// as a sentence for embedding.
type CSVExtractor struct{}

// Extract renders the header line followed by one line per non-empty row:
//
//	CSV Data with columns: name, price
//
//	Row 1: name: Basic, price: 10
//
// Rows are numbered by the line they start on with the header as line zero,
// so blank lines, which encoding/csv skips, still advance the count.
func (e *CSVExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", extractionError("csv", errors.New("file is empty"))
		}
		return "", extractionError("csv", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CSV Data with columns: %s\n\n", strings.Join(header, ", "))

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", extractionError("csv", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		pairs := make([]string, len(header))
		for i, col := range header {
			var val string
			if i < len(record) {
				val = strings.TrimSpace(record[i])
			}
			pairs[i] = col + ": " + val
		}
		line, _ := r.FieldPos(0)
		fmt.Fprintf(&b, "Row %d: %s\n", line-1, strings.Join(pairs, ", "))
	}

	return b.String(), nil
}

func (e *CSVExtractor) SupportedTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeCSV}
}
