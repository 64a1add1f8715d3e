// Package vectorindex defines the types shared between the retrieval
// pipeline and the external similarity index it talks to.
package vectorindex

// ChunkMetadata is the fixed metadata schema stored alongside every vector.
// It carries enough denormalized fields that a query match is self-describing
// without a join back to the durable store.
type ChunkMetadata struct {
	DocumentID string `json:"documentId"`
	ChunkIndex int    `json:"chunkIndex"`
	ChunkText  string `json:"chunkText"`
	FileName   string `json:"fileName,omitempty"`
}

// Entry is one (key, vector, metadata) triple to upsert. Upserting the same
// ID twice overwrites the previous entry.
type Entry struct {
	ID       string
	Values   []float32
	Metadata ChunkMetadata
}

// Match is one ranked result of a top-K similarity query.
type Match struct {
	ID       string
	Score    float64
	Metadata ChunkMetadata
}
