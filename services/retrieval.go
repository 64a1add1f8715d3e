package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ScoredChunk is one retrieved grounding passage with its similarity score.
type ScoredChunk struct {
	VectorID   string  `json:"vectorId"`
	DocumentID string  `json:"documentId"`
	ChunkIndex int     `json:"chunkIndex"`
	Text       string  `json:"text"`
	FileName   string  `json:"fileName,omitempty"`
	Score      float64 `json:"score"`
}

// RetrievalResult holds the top-K chunks for a question, ordered by
// descending similarity. Empty when the index has nothing relevant.
type RetrievalResult struct {
	Chunks []ScoredChunk
}

// Texts returns the chunk texts in retrieval order.
func (r *RetrievalResult) Texts() []string {
	texts := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		texts[i] = c.Text
	}
	return texts
}

// Context joins the retrieved chunks into the grounding block handed to
// the generation prompt.
func (r *RetrievalResult) Context() string {
	return strings.Join(r.Texts(), "\n\n---\n\n")
}

// RetrievalEngine embeds a question and queries the vector index for the
// most similar stored chunks.
type RetrievalEngine struct {
	embedder Embedder
	index    VectorIndex
	topK     int
}

func NewRetrievalEngine(embedder Embedder, index VectorIndex, topK int) *RetrievalEngine {
	return &RetrievalEngine{embedder: embedder, index: index, topK: topK}
}

// Retrieve returns up to topK chunks relevant to the question. A question
// that matches nothing returns an empty result, not an error.
func (e *RetrievalEngine) Retrieve(ctx context.Context, question string) (*RetrievalResult, error) {
	ctx, span := otel.Tracer("retrieval").Start(ctx, "retrieval.retrieve")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, Errorf(KindInvalidInput, "retrieval.retrieve", "question is empty")
	}

	vector, err := e.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, E(KindEmbedding, "retrieval.embed_question", err)
	}

	matches, err := e.index.Query(ctx, vector, e.topK)
	if err != nil {
		return nil, E(KindIndex, "retrieval.query_index", err)
	}

	chunks := make([]ScoredChunk, 0, len(matches))
	for _, m := range matches {
		// A match with no metadata text (upserted by another writer, or
		// queried without includeMetadata) cannot ground an answer.
		// Dropping it keeps relative order of the remaining matches.
		if m.Metadata.ChunkText == "" {
			continue
		}
		chunks = append(chunks, ScoredChunk{
			VectorID:   m.ID,
			DocumentID: m.Metadata.DocumentID,
			ChunkIndex: m.Metadata.ChunkIndex,
			Text:       m.Metadata.ChunkText,
			FileName:   m.Metadata.FileName,
			Score:      m.Score,
		})
	}

	span.SetAttributes(attribute.Int("retrieval.matches", len(chunks)))
	return &RetrievalResult{Chunks: chunks}, nil
}
