package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"legalcase-platform/internal/vectorindex"
	"legalcase-platform/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEmbedder struct {
	batchErr  error
	singleErr error
	calls     int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), float32(i)}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.singleErr != nil {
		return nil, f.singleErr
	}
	return []float32{float32(len(text))}, nil
}

type fakeIndex struct {
	upserted   []vectorindex.Entry
	deleted    []string
	matches    []vectorindex.Match
	upsertErr  error
	queryErr   error
	deleteErr  error
	queryCalls int
}

func (f *fakeIndex) Upsert(ctx context.Context, entries []vectorindex.Entry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, entries...)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) Delete(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakeDocStore struct {
	docs         []*models.Document
	chunks       []models.DocumentChunk
	deletedDocs  []primitive.ObjectID
	insertDocErr error
	chunksErr    error
}

func (f *fakeDocStore) InsertDocument(ctx context.Context, doc *models.Document) error {
	if f.insertDocErr != nil {
		return f.insertDocErr
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocStore) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	f.deletedDocs = append(f.deletedDocs, id)
	for i, d := range f.docs {
		if d.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDocStore) InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if f.chunksErr != nil {
		return f.chunksErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func newTestIngestion(embedder *fakeEmbedder, index *fakeIndex, store *fakeDocStore, chunkSize int) *IngestionService {
	return NewIngestionService(embedder, index, store, chunkSize)
}

func TestIngestDocumentHappyPath(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	store := &fakeDocStore{}
	svc := newTestIngestion(embedder, index, store, 4)

	result, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		FileName:  "contract.txt",
		Category:  models.CategoryDiscovery,
		Content:   "ABCDEFGHIJ",
	})
	if err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if result.ChunkCount != 3 {
		t.Fatalf("chunk count = %d, want 3", result.ChunkCount)
	}

	if len(index.upserted) != 3 {
		t.Fatalf("upserted %d vectors, want 3", len(index.upserted))
	}
	for i, entry := range index.upserted {
		wantID := fmt.Sprintf("%s-chunk-%d", result.DocumentID, i)
		if entry.ID != wantID {
			t.Errorf("entry %d id = %q, want %q", i, entry.ID, wantID)
		}
		if entry.Metadata.ChunkIndex != i {
			t.Errorf("entry %d metadata index = %d, want %d", i, entry.Metadata.ChunkIndex, i)
		}
		if entry.Metadata.DocumentID != result.DocumentID {
			t.Errorf("entry %d metadata document id = %q, want %q", i, entry.Metadata.DocumentID, result.DocumentID)
		}
		if entry.Metadata.FileName != "contract.txt" {
			t.Errorf("entry %d metadata file name = %q", i, entry.Metadata.FileName)
		}
	}

	if len(store.docs) != 1 {
		t.Fatalf("stored %d documents, want 1", len(store.docs))
	}
	if len(store.chunks) != 3 {
		t.Fatalf("stored %d chunk records, want 3", len(store.chunks))
	}
	var joined strings.Builder
	for i, ch := range store.chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk record %d has index %d", i, ch.ChunkIndex)
		}
		joined.WriteString(ch.Text)
	}
	if joined.String() != "ABCDEFGHIJ" {
		t.Fatalf("chunk records do not reproduce content")
	}
}

func TestIngestDocumentEmbeddingFailureLeavesNothing(t *testing.T) {
	embedder := &fakeEmbedder{batchErr: errors.New("quota exceeded")}
	index := &fakeIndex{}
	store := &fakeDocStore{}
	svc := newTestIngestion(embedder, index, store, 4)

	_, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		Content:   "ABCDEFGHIJ",
	})
	if !IsKind(err, KindEmbedding) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindEmbedding)
	}
	if len(index.upserted) != 0 || len(store.docs) != 0 || len(store.chunks) != 0 {
		t.Fatalf("partial state left behind after embedding failure")
	}
}

func TestIngestDocumentUpsertFailure(t *testing.T) {
	index := &fakeIndex{upsertErr: errors.New("index unavailable")}
	store := &fakeDocStore{}
	svc := newTestIngestion(&fakeEmbedder{}, index, store, 4)

	_, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		Content:   "ABCDEFGHIJ",
	})
	if !IsKind(err, KindIndex) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindIndex)
	}
	if len(store.docs) != 0 || len(store.chunks) != 0 {
		t.Fatalf("records written despite upsert failure")
	}
}

func TestIngestDocumentChunkPersistFailureDeletesVectors(t *testing.T) {
	index := &fakeIndex{}
	store := &fakeDocStore{chunksErr: E(KindRecordStore, "store.insert_chunks", errors.New("write concern"))}
	svc := newTestIngestion(&fakeEmbedder{}, index, store, 4)

	_, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		Content:   "ABCDEFGHIJ",
	})
	if !IsKind(err, KindRecordStore) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindRecordStore)
	}
	if len(index.deleted) != 3 {
		t.Fatalf("deleted %d vectors during compensation, want 3", len(index.deleted))
	}
	if len(store.docs) != 0 {
		t.Fatalf("document record left behind after compensation")
	}
}

func TestIngestDocumentRejectsEmptyContent(t *testing.T) {
	svc := newTestIngestion(&fakeEmbedder{}, &fakeIndex{}, &fakeDocStore{}, 4)

	_, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		Content:   "   \n\t ",
	})
	if !IsKind(err, KindInvalidInput) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindInvalidInput)
	}
}

func TestIngestDocumentRejectsUnknownCategory(t *testing.T) {
	svc := newTestIngestion(&fakeEmbedder{}, &fakeIndex{}, &fakeDocStore{}, 4)

	_, err := svc.IngestDocument(context.Background(), IngestInput{
		ProjectID: primitive.NewObjectID(),
		Category:  "memoir",
		Content:   "some content",
	})
	if !IsKind(err, KindInvalidInput) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindInvalidInput)
	}
}
