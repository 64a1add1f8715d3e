package services

import (
	"context"
	"strings"
	"time"

	"legalcase-platform/internal/logger"
	"legalcase-platform/internal/vectorindex"
	"legalcase-platform/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Embedder turns text into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the external similarity index the pipeline upserts into
// and queries against.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []vectorindex.Entry) error
	Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error)
	Delete(ctx context.Context, ids []string) error
}

// DocumentStore persists documents and their chunk records. DeleteDocument
// exists for saga compensation only.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id primitive.ObjectID) error
	InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error
}

// IngestInput is one document to run through the ingestion pipeline.
type IngestInput struct {
	ProjectID primitive.ObjectID
	FileName  string
	Category  string
	Content   string
}

// IngestResult reports what a successful ingestion produced.
type IngestResult struct {
	DocumentID string
	ChunkCount int
}

// IngestionService runs the chunk -> embed -> upsert -> persist pipeline.
// The steps form a saga: once vectors have been upserted, any later failure
// deletes them again so the index never references a document the record
// store does not know about.
type IngestionService struct {
	embedder     Embedder
	index        VectorIndex
	store        DocumentStore
	maxChunkSize int
}

func NewIngestionService(embedder Embedder, index VectorIndex, store DocumentStore, maxChunkSize int) *IngestionService {
	return &IngestionService{
		embedder:     embedder,
		index:        index,
		store:        store,
		maxChunkSize: maxChunkSize,
	}
}

// IngestDocument chunks and embeds the content, upserts the vectors, then
// persists the document and its chunk records. Returns the new document id
// and chunk count. On failure nothing remains: partial state is rolled back
// before the error is returned.
func (s *IngestionService) IngestDocument(ctx context.Context, in IngestInput) (*IngestResult, error) {
	ctx, span := otel.Tracer("ingestion").Start(ctx, "ingestion.ingest_document")
	defer span.End()

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, Errorf(KindInvalidInput, "ingestion.ingest_document", "document content is empty")
	}
	category := in.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !models.ValidCategory(category) {
		return nil, Errorf(KindInvalidInput, "ingestion.ingest_document", "unknown category %q", in.Category)
	}

	chunks, err := SplitText(content, s.maxChunkSize)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, Errorf(KindInvalidInput, "ingestion.ingest_document", "document produced no chunks")
	}

	vectors, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, E(KindEmbedding, "ingestion.embed_chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, Errorf(KindEmbedding, "ingestion.embed_chunks",
			"embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	docID := primitive.NewObjectID()
	now := time.Now()

	entries := make([]vectorindex.Entry, len(chunks))
	vectorIDs := make([]string, len(chunks))
	records := make([]models.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		id := models.VectorID(docID.Hex(), i)
		vectorIDs[i] = id
		entries[i] = vectorindex.Entry{
			ID:     id,
			Values: vectors[i],
			Metadata: vectorindex.ChunkMetadata{
				DocumentID: docID.Hex(),
				ChunkIndex: i,
				ChunkText:  chunk,
				FileName:   in.FileName,
			},
		}
		records[i] = models.DocumentChunk{
			DocumentID: docID,
			ChunkIndex: i,
			Text:       chunk,
			VectorID:   id,
			CreatedAt:  now,
		}
	}

	if err := s.index.Upsert(ctx, entries); err != nil {
		return nil, E(KindIndex, "ingestion.upsert_vectors", err)
	}

	doc := &models.Document{
		ID:         docID,
		ProjectID:  in.ProjectID,
		FileName:   in.FileName,
		Category:   category,
		Content:    content,
		UploadedAt: now,
	}
	if err := s.store.InsertDocument(ctx, doc); err != nil {
		s.compensate(ctx, docID, vectorIDs, false)
		return nil, err
	}
	if err := s.store.InsertChunks(ctx, records); err != nil {
		s.compensate(ctx, docID, vectorIDs, true)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("document.id", docID.Hex()),
		attribute.Int("document.chunk_count", len(chunks)),
	)
	logger.Info("Document ingested",
		"document_id", docID.Hex(),
		"project_id", in.ProjectID.Hex(),
		"category", category,
		"chunks", len(chunks))

	return &IngestResult{DocumentID: docID.Hex(), ChunkCount: len(chunks)}, nil
}

// compensate undoes the steps that succeeded before a later one failed.
// Compensation failures are logged, not returned: the caller's error is the
// original one, and leftover vectors are keyed by a document id that no
// record references.
func (s *IngestionService) compensate(ctx context.Context, docID primitive.ObjectID, vectorIDs []string, docInserted bool) {
	if err := s.index.Delete(ctx, vectorIDs); err != nil {
		logger.Error("Compensation: failed to delete vectors", "document_id", docID.Hex(), "error", err)
	}
	if docInserted {
		if err := s.store.DeleteDocument(ctx, docID); err != nil {
			logger.Error("Compensation: failed to delete document record", "document_id", docID.Hex(), "error", err)
		}
	}
}
