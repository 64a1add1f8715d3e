package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document categories. Uncategorized uploads default to CategoryOther.
const (
	CategoryDiscovery     = "discovery"
	CategoryTranscript    = "transcript"
	CategoryCommunication = "communication"
	CategoryMotion        = "motion"
	CategoryOther         = "other"
)

// ValidCategory reports whether c is one of the known document categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryDiscovery, CategoryTranscript, CategoryCommunication, CategoryMotion, CategoryOther:
		return true
	}
	return false
}

// Document is one uploaded case document. Immutable once created; its
// chunks and vector-index entries live and die with it.
type Document struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID  primitive.ObjectID `bson:"project_id" json:"project_id"`
	FileName   string             `bson:"file_name,omitempty" json:"file_name,omitempty"`
	Category   string             `bson:"category" json:"category"`
	Content    string             `bson:"content" json:"content"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

// DocumentChunk is a durable reference to one retrieval unit: the chunk's
// text plus the id it was upserted under in the vector index. Chunk indices
// for a document are contiguous 0..n-1.
type DocumentChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentID primitive.ObjectID `bson:"document_id" json:"document_id"`
	ChunkIndex int                `bson:"chunk_index" json:"chunk_index"`
	Text       string             `bson:"text" json:"text"`
	VectorID   string             `bson:"vector_id" json:"vector_id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// VectorID derives the vector-index key for a (document, chunk index) pair.
// Deterministic so re-upserting the same document id overwrites by key.
func VectorID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s-chunk-%d", documentID, chunkIndex)
}

type UploadDocumentRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	FileName  string `json:"fileName,omitempty"`
	Category  string `json:"category,omitempty"`
	Content   string `json:"content" binding:"required"`
}

type UploadDocumentResponse struct {
	Message    string `json:"message"`
	DocID      string `json:"docId"`
	ChunkCount int    `json:"chunkCount"`
}
