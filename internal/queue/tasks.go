package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"legalcase-platform/internal/logger"
	"legalcase-platform/internal/telemetry"
	"legalcase-platform/models"
	"legalcase-platform/services"
)

const TaskIngestDocument = "document:ingest"

type IngestDocumentPayload struct {
	UploadID  string `json:"upload_id"`
	ProjectID string `json:"project_id"`
	FileName  string `json:"file_name"`
	Category  string `json:"category"`
	FilePath  string `json:"file_path"`
}

// NewIngestDocumentTask queues one uploaded file for ingestion.
func NewIngestDocumentTask(p IngestDocumentPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// UploadStatusStore tracks upload state transitions.
type UploadStatusStore interface {
	SetUploadStatus(ctx context.Context, id string, status string, update bson.M) error
}

// DocumentIngester runs the ingestion pipeline for one document.
type DocumentIngester interface {
	IngestDocument(ctx context.Context, in services.IngestInput) (*services.IngestResult, error)
}

// TextExtractor pulls plain text out of a stored upload.
type TextExtractor interface {
	ExtractFile(ctx context.Context, path string) (*services.ExtractionResult, error)
}

// TaskProcessor handles queued ingestion work.
type TaskProcessor struct {
	store     UploadStatusStore
	ingestion DocumentIngester
	extractor TextExtractor
	metrics   *telemetry.Metrics
}

func NewTaskProcessor(store UploadStatusStore, ingestion DocumentIngester, extractor TextExtractor, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{
		store:     store,
		ingestion: ingestion,
		extractor: extractor,
		metrics:   metrics,
	}
}

// ProcessIngestDocument extracts the uploaded file's text and runs it
// through the ingestion pipeline, tracking status on the upload record.
// Invalid inputs fail permanently; collaborator failures are retried by
// asynq.
func (p *TaskProcessor) ProcessIngestDocument(ctx context.Context, t *asynq.Task) error {
	var payload IngestDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing upload", "upload_id", payload.UploadID, "file", payload.FileName)
	start := time.Now()

	if err := p.store.SetUploadStatus(ctx, payload.UploadID, models.UploadStatusProcessing, nil); err != nil {
		return err
	}

	result, err := p.ingestUpload(ctx, payload)
	if err != nil {
		p.metrics.RecordIngestion(payload.Category, 0, time.Since(start).Seconds(), false)
		if failErr := p.store.SetUploadStatus(ctx, payload.UploadID, models.UploadStatusFailed, bson.M{
			"error": err.Error(),
		}); failErr != nil {
			logger.Error("Failed to mark upload failed", "upload_id", payload.UploadID, "error", failErr)
		}
		if services.IsKind(err, services.KindInvalidInput) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	p.metrics.RecordIngestion(payload.Category, result.ChunkCount, time.Since(start).Seconds(), true)

	// The document and its vectors exist once ingestion returns. A failed
	// status write must not fail the task: a retry would re-ingest under a
	// fresh document id and duplicate every chunk.
	if err := p.store.SetUploadStatus(ctx, payload.UploadID, models.UploadStatusCompleted, bson.M{
		"document_id": result.DocumentID,
		"chunk_count": result.ChunkCount,
	}); err != nil {
		logger.Error("Failed to mark upload completed",
			"upload_id", payload.UploadID,
			"document_id", result.DocumentID,
			"error", err)
	}
	return nil
}

func (p *TaskProcessor) ingestUpload(ctx context.Context, payload IngestDocumentPayload) (*services.IngestResult, error) {
	projectID, err := primitive.ObjectIDFromHex(payload.ProjectID)
	if err != nil {
		return nil, services.Errorf(services.KindInvalidInput, "queue.ingest_upload", "bad project id %q", payload.ProjectID)
	}

	extracted, err := p.extractor.ExtractFile(ctx, payload.FilePath)
	if err != nil {
		return nil, err
	}

	return p.ingestion.IngestDocument(ctx, services.IngestInput{
		ProjectID: projectID,
		FileName:  payload.FileName,
		Category:  payload.Category,
		Content:   extracted.Text,
	})
}
