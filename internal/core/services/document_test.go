package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-rag/internal/extractors"
)

type documentFixture struct {
	svc    *documentService
	docs   *mocks.MockDocumentStore
	chunks *mocks.MockChunkStore
	queue  *mocks.MockTaskQueue
	lock   *mocks.MockDistributedLock
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	f := &documentFixture{
		docs:   mocks.NewMockDocumentStore(),
		chunks: mocks.NewMockChunkStore(),
		queue:  mocks.NewMockTaskQueue(),
		lock:   mocks.NewMockDistributedLock(),
	}
	f.svc = NewDocumentService(DocumentServiceConfig{
		DocumentStore:  f.docs,
		ChunkStore:     f.chunks,
		Extractors:     extractors.DefaultRegistry(),
		TaskQueue:      f.queue,
		Lock:           f.lock,
		MaxUploadBytes: 1024,
		LockWait:       200 * time.Millisecond,
	}).(*documentService)
	return f
}

func TestDocumentService_Upload(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "faq.txt", []byte("Q: How do I log in?\nUse your email."))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.Type != domain.FileTypeTXT {
		t.Errorf("expected txt, got %s", doc.Type)
	}
	if doc.Status != domain.DocumentStatusProcessing {
		t.Errorf("expected processing, got %s", doc.Status)
	}
	if doc.Size != 35 {
		t.Errorf("expected size 35, got %d", doc.Size)
	}

	stored, err := f.docs.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("document not stored: %v", err)
	}
	if !strings.Contains(stored.Content, "How do I log in?") {
		t.Errorf("expected extracted content stored, got %q", stored.Content)
	}

	tasks := f.queue.Enqueued()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Type != domain.TaskTypeIngestDocument || tasks[0].DocumentID() != doc.ID {
		t.Errorf("unexpected task %+v", tasks[0])
	}
}

func TestDocumentService_Upload_CSV(t *testing.T) {
	f := newDocumentFixture(t)

	doc, err := f.svc.Upload(context.Background(), "plans.csv", []byte("plan,price\nBasic,$10\n"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	stored, _ := f.docs.Get(context.Background(), doc.ID)
	if !strings.HasPrefix(stored.Content, "CSV Data with columns: plan, price") {
		t.Errorf("unexpected CSV content %q", stored.Content)
	}
}

func TestDocumentService_Upload_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{"missing name", " ", []byte("x"), domain.ErrInvalidInput},
		{"empty file", "a.txt", nil, domain.ErrInvalidInput},
		{"too large", "a.txt", make([]byte, 2048), domain.ErrInvalidInput},
		{"unsupported type", "slides.pptx", []byte("x"), domain.ErrUnsupportedFormat},
		{"no extension", "README", []byte("x"), domain.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			_, err := f.svc.Upload(context.Background(), tt.file, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if n, _ := f.docs.Count(context.Background()); n != 0 {
				t.Errorf("expected nothing stored, got %d documents", n)
			}
		})
	}
}

func TestDocumentService_Upload_ExtractionFailure(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "broken.pdf", []byte("definitely not a pdf"))
	if err != nil {
		t.Fatalf("extraction failures are recorded, not returned: %v", err)
	}
	if doc.Status != domain.DocumentStatusError {
		t.Errorf("expected error status, got %s", doc.Status)
	}
	if doc.ErrorMessage == "" {
		t.Error("expected error message")
	}
	if len(f.queue.Enqueued()) != 0 {
		t.Error("expected no ingestion task for a failed extraction")
	}
}

func TestDocumentService_Upload_BlankText(t *testing.T) {
	f := newDocumentFixture(t)

	doc, err := f.svc.Upload(context.Background(), "blank.txt", []byte("  \n\n  "))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.DocumentStatusError {
		t.Errorf("expected error status for blank text, got %s", doc.Status)
	}
}

func TestDocumentService_Upload_EnqueueFailure(t *testing.T) {
	f := newDocumentFixture(t)
	f.queue.EnqueueErr = errors.New("queue down")

	_, err := f.svc.Upload(context.Background(), "a.txt", []byte("hello"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}

	docs, _ := f.docs.List(context.Background())
	if len(docs) != 1 || docs[0].Status != domain.DocumentStatusError {
		t.Errorf("expected the document marked as error, got %+v", docs)
	}
}

func TestDocumentService_Delete_CascadesChunks(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	keep := domain.NewDocument("keep.txt", 1)
	drop := domain.NewDocument("drop.txt", 1)
	_ = f.docs.Save(ctx, keep)
	_ = f.docs.Save(ctx, drop)
	_ = f.chunks.SaveBatch(ctx, []*domain.Chunk{
		{ID: "k0", DocumentID: keep.ID, Index: 0, Content: "keep"},
		{ID: "d0", DocumentID: drop.ID, Index: 0, Content: "drop"},
		{ID: "d1", DocumentID: drop.ID, Index: 1, Content: "drop"},
	})

	if err := f.svc.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	all, _ := f.chunks.List(ctx)
	for _, c := range all {
		if c.DocumentID == drop.ID {
			t.Errorf("chunk %s of deleted document still present", c.ID)
		}
	}
	if len(all) != 1 {
		t.Errorf("expected 1 remaining chunk, got %d", len(all))
	}
	if _, err := f.docs.Get(ctx, drop.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected document removed")
	}
	if f.lock.IsHeld(documentLockName(drop.ID)) {
		t.Error("expected lock released")
	}
}

func TestDocumentService_Delete_CancelsPendingIngestion(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	drop, err := f.svc.Upload(ctx, "drop.txt", []byte("Refunds take five business days."))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	keep, err := f.svc.Upload(ctx, "keep.txt", []byte("Support is open on weekdays."))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := f.svc.Delete(ctx, drop.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, task := range f.queue.Enqueued() {
		switch task.DocumentID() {
		case drop.ID:
			if task.Status != domain.TaskStatusFailed || task.Error != "cancelled" {
				t.Errorf("expected ingestion of deleted document cancelled, got %s %q", task.Status, task.Error)
			}
		case keep.ID:
			if task.Status != domain.TaskStatusPending {
				t.Errorf("expected other ingestion pending, got %s", task.Status)
			}
		}
	}

	next, _ := f.queue.DequeueWithTimeout(ctx, 0)
	if next == nil || next.DocumentID() != keep.ID {
		t.Fatalf("expected only the remaining document's task, got %+v", next)
	}
	if again, _ := f.queue.DequeueWithTimeout(ctx, 0); again != nil {
		t.Errorf("cancelled task was delivered: %+v", again)
	}
}

func TestDocumentService_Delete_IngestionAlreadyRunning(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "a.txt", []byte("Refunds take five business days."))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	running, _ := f.queue.DequeueWithTimeout(ctx, 0)
	if running == nil {
		t.Fatal("expected ingestion task")
	}

	if err := f.svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if running.Status != domain.TaskStatusProcessing {
		t.Errorf("expected running task left to the worker, got %s", running.Status)
	}
}

func TestDocumentService_Delete_NotFound(t *testing.T) {
	f := newDocumentFixture(t)

	if err := f.svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentService_Delete_WaitsForLock(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	doc := domain.NewDocument("a.txt", 1)
	_ = f.docs.Save(ctx, doc)
	f.lock.SetLockHeld(documentLockName(doc.ID), time.Minute)

	err := f.svc.Delete(ctx, doc.ID)
	if !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired, got %v", err)
	}
	if _, err := f.docs.Get(ctx, doc.ID); err != nil {
		t.Error("expected document kept while an ingestion holds the lock")
	}
}

func TestDocumentService_GetChunks(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	doc := domain.NewDocument("a.txt", 1)
	_ = f.docs.Save(ctx, doc)
	_ = f.chunks.SaveBatch(ctx, []*domain.Chunk{
		{ID: "c1", DocumentID: doc.ID, Index: 1},
		{ID: "c0", DocumentID: doc.ID, Index: 0},
	})

	chunks, err := f.svc.GetChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(chunks) != 2 || chunks[0].ID != "c0" {
		t.Errorf("expected chunks ordered by index, got %+v", chunks)
	}

	if _, err := f.svc.GetChunks(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentService_ListChunks(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	_ = f.chunks.SaveBatch(ctx, []*domain.Chunk{
		{ID: "c0", DocumentID: "d", Index: 0, Content: strings.Repeat("x", 150), Embedding: []float32{1, 2, 3}},
		{ID: "c1", DocumentID: "d", Index: 1, Content: "short"},
	})

	listing, err := f.svc.ListChunks(ctx)
	if err != nil {
		t.Fatalf("ListChunks() error = %v", err)
	}
	if listing.Total != 2 || listing.WithEmbeddings != 1 {
		t.Errorf("unexpected totals %+v", listing)
	}
	first := listing.Chunks[0]
	if first.ContentPreview != strings.Repeat("x", 100)+"..." {
		t.Errorf("expected 100-char preview, got %q", first.ContentPreview)
	}
	if !first.HasEmbedding || first.EmbeddingLength != 3 {
		t.Errorf("unexpected embedding info %+v", first)
	}
}
