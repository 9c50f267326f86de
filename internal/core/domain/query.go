package domain

import "time"

// QueryStatus is the lifecycle state of a question
type QueryStatus string

const (
	QueryStatusProcessing QueryStatus = "processing"
	QueryStatusCompleted  QueryStatus = "completed"
	QueryStatusError      QueryStatus = "error"
)

// Query is a question asked against the indexed documents
type Query struct {
	ID           string           `json:"id"`
	Question     string           `json:"question"`
	Status       QueryStatus      `json:"status"`
	Answer       string           `json:"answer,omitempty"`
	Confidence   *float64         `json:"confidence,omitempty"`
	Sources      []SourceCitation `json:"sources"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// SourceCitation attributes part of an answer to a retrieved chunk
type SourceCitation struct {
	DocumentID   string        `json:"documentId"`
	DocumentName string        `json:"documentName"`
	ChunkID      string        `json:"chunkId"`
	Relevance    float64       `json:"relevance"`
	Content      string        `json:"content"`
	Metadata     ChunkMetadata `json:"metadata"`
}

// NewQuery creates a query in the processing state
func NewQuery(question string) *Query {
	return &Query{
		ID:        GenerateID(),
		Question:  question,
		Status:    QueryStatusProcessing,
		CreatedAt: time.Now(),
	}
}

// Complete records the answer and moves the query to completed
func (q *Query) Complete(answer string, confidence float64, sources []SourceCitation) {
	q.Status = QueryStatusCompleted
	q.Answer = answer
	q.Confidence = &confidence
	if len(sources) == 0 {
		sources = []SourceCitation{}
	}
	q.Sources = sources
	q.ErrorMessage = ""
}

// Fail moves the query to the error state
func (q *Query) Fail(msg string) {
	q.Status = QueryStatusError
	q.ErrorMessage = msg
	q.Sources = nil
}
