package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is a supported upload format
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeCSV FileType = "csv"
	FileTypeTXT FileType = "txt"
)

// IsSupported reports whether the file type can be extracted
func (t FileType) IsSupported() bool {
	switch t {
	case FileTypePDF, FileTypeCSV, FileTypeTXT:
		return true
	default:
		return false
	}
}

// FileTypeFromName derives the file type from a file name extension
func FileTypeFromName(name string) FileType {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return FileType(strings.ToLower(ext))
}

// DocumentStatus is the lifecycle state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "uploading"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusError      DocumentStatus = "error"
)

// IsTerminal returns true once no further processing will happen
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusProcessed || s == DocumentStatusError
}

// Document represents an uploaded file and its extracted text
type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         FileType       `json:"type"`
	Size         int64          `json:"size"`
	Status       DocumentStatus `json:"status"`
	Content      string         `json:"content,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// NewDocument creates a document in the uploading state
func NewDocument(name string, size int64) *Document {
	return &Document{
		ID:         GenerateID(),
		Name:       name,
		Type:       FileTypeFromName(name),
		Size:       size,
		Status:     DocumentStatusUploading,
		UploadedAt: time.Now(),
	}
}

// MarkProcessing stores the extracted text and moves the document to processing
func (d *Document) MarkProcessing(content string) {
	d.Content = content
	d.Status = DocumentStatusProcessing
	d.ErrorMessage = ""
}

// MarkProcessed moves the document to its successful terminal state
func (d *Document) MarkProcessed() {
	now := time.Now()
	d.Status = DocumentStatusProcessed
	d.ProcessedAt = &now
	d.ErrorMessage = ""
}

// MarkError moves the document to its failed terminal state
func (d *Document) MarkError(msg string) {
	d.Status = DocumentStatusError
	d.ErrorMessage = msg
}

// ContentType is a coarse classification of chunk text
type ContentType string

const (
	ContentTypeNone         ContentType = ""
	ContentTypeFAQ          ContentType = "faq"
	ContentTypeInstructions ContentType = "instructions"
	ContentTypePricing      ContentType = "pricing"
)

// ChunkMetadata holds lightweight annotations derived from chunk text
type ChunkMetadata struct {
	ChunkIndex     int         `json:"chunkIndex"`
	FileName       string      `json:"fileName,omitempty"`
	WordCount      int         `json:"wordCount"`
	CharCount      int         `json:"charCount"`
	PossibleHeader string      `json:"possibleHeader,omitempty"`
	ContentType    ContentType `json:"contentType,omitempty"`
}

// Chunk is the unit of retrieval: a bounded, overlapping window of a document
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Index      int           `json:"index"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Metadata   ChunkMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

// HasEmbedding reports whether an embedding has been generated
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
