package models

import "time"

// Upload statuses for the async file-upload path.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// Upload tracks an accepted file upload while the worker extracts its text
// and runs it through the ingestion pipeline. Keyed by a UUID, not an
// ObjectID, so the id can be handed back before anything durable exists.
type Upload struct {
	ID         string    `bson:"_id" json:"id"`
	ProjectID  string    `bson:"project_id" json:"project_id"`
	FileName   string    `bson:"file_name" json:"file_name"`
	Category   string    `bson:"category" json:"category"`
	FilePath   string    `bson:"file_path" json:"-"`
	Size       int64     `bson:"size" json:"size"`
	Status     string    `bson:"status" json:"status"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	DocumentID string    `bson:"document_id,omitempty" json:"document_id,omitempty"`
	ChunkCount int       `bson:"chunk_count,omitempty" json:"chunk_count,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
