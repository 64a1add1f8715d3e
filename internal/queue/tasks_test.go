package queue

import (
	"context"
	"errors"
	"testing"

	"legalcase-platform/internal/telemetry"
	"legalcase-platform/models"
	"legalcase-platform/services"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStatusStore struct {
	statuses   []string
	updates    []bson.M
	failStatus string
}

func (f *fakeStatusStore) SetUploadStatus(ctx context.Context, id string, status string, update bson.M) error {
	if status == f.failStatus {
		return services.E(services.KindRecordStore, "store.set_upload_status", errors.New("write concern"))
	}
	f.statuses = append(f.statuses, status)
	f.updates = append(f.updates, update)
	return nil
}

type fakeIngester struct {
	result *services.IngestResult
	err    error
	calls  int
}

func (f *fakeIngester) IngestDocument(ctx context.Context, in services.IngestInput) (*services.IngestResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractFile(ctx context.Context, path string) (*services.ExtractionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ExtractionResult{Text: f.text, Pages: 1}, nil
}

func newIngestTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewIngestDocumentTask(IngestDocumentPayload{
		UploadID:  "u1",
		ProjectID: primitive.NewObjectID().Hex(),
		FileName:  "brief.pdf",
		Category:  models.CategoryMotion,
		FilePath:  "/tmp/u1.pdf",
	})
	if err != nil {
		t.Fatalf("task error: %v", err)
	}
	return task
}

func newTestProcessor(t *testing.T, store *fakeStatusStore, ingester *fakeIngester, extractor *fakeExtractor) *TaskProcessor {
	t.Helper()
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("metrics error: %v", err)
	}
	return NewTaskProcessor(store, ingester, extractor, metrics)
}

func TestProcessIngestDocumentSuccess(t *testing.T) {
	store := &fakeStatusStore{}
	ingester := &fakeIngester{result: &services.IngestResult{DocumentID: "doc1", ChunkCount: 3}}
	p := newTestProcessor(t, store, ingester, &fakeExtractor{text: "extracted brief text"})

	if err := p.ProcessIngestDocument(context.Background(), newIngestTask(t)); err != nil {
		t.Fatalf("process error: %v", err)
	}

	want := []string{models.UploadStatusProcessing, models.UploadStatusCompleted}
	if len(store.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", store.statuses, want)
	}
	for i := range want {
		if store.statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", store.statuses, want)
		}
	}
	if store.updates[1]["document_id"] != "doc1" || store.updates[1]["chunk_count"] != 3 {
		t.Fatalf("completed update = %v", store.updates[1])
	}
}

func TestProcessIngestDocumentCompletedWriteFailureDoesNotRetry(t *testing.T) {
	store := &fakeStatusStore{failStatus: models.UploadStatusCompleted}
	ingester := &fakeIngester{result: &services.IngestResult{DocumentID: "doc1", ChunkCount: 2}}
	p := newTestProcessor(t, store, ingester, &fakeExtractor{text: "extracted brief text"})

	if err := p.ProcessIngestDocument(context.Background(), newIngestTask(t)); err != nil {
		t.Fatalf("status-write failure after a successful ingestion must not fail the task: %v", err)
	}
	if ingester.calls != 1 {
		t.Fatalf("ingestion ran %d times, want 1", ingester.calls)
	}
	for _, s := range store.statuses {
		if s == models.UploadStatusFailed {
			t.Fatalf("upload marked failed after successful ingestion")
		}
	}
}

func TestProcessIngestDocumentInvalidInputSkipsRetry(t *testing.T) {
	store := &fakeStatusStore{}
	ingester := &fakeIngester{err: services.Errorf(services.KindInvalidInput, "ingestion.ingest_document", "document content is empty")}
	p := newTestProcessor(t, store, ingester, &fakeExtractor{text: "x"})

	err := p.ProcessIngestDocument(context.Background(), newIngestTask(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("invalid input should not be retried: %v", err)
	}
	if last := store.statuses[len(store.statuses)-1]; last != models.UploadStatusFailed {
		t.Fatalf("last status = %q, want %q", last, models.UploadStatusFailed)
	}
}

func TestProcessIngestDocumentCollaboratorFailureRetries(t *testing.T) {
	store := &fakeStatusStore{}
	ingester := &fakeIngester{err: services.E(services.KindEmbedding, "ingestion.embed_chunks", errors.New("quota exceeded"))}
	p := newTestProcessor(t, store, ingester, &fakeExtractor{text: "x"})

	err := p.ProcessIngestDocument(context.Background(), newIngestTask(t))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("embedding failure should be retriable, got: %v", err)
	}
	if last := store.statuses[len(store.statuses)-1]; last != models.UploadStatusFailed {
		t.Fatalf("last status = %q, want %q", last, models.UploadStatusFailed)
	}
}
