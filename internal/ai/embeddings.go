package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// EmbeddingClient converts text into fixed-dimension vectors via the
// Google embedding models (default text-embedding-004).
type EmbeddingClient struct {
	client *genai.Client
	model  string
}

func NewEmbeddingClient(client *genai.Client, model string) *EmbeddingClient {
	return &EmbeddingClient{client: client, model: model}
}

// EmbedTexts embeds all texts in a single batched call and returns vectors
// in input order. A result count that does not match the input count is an
// error: callers must never index partial vectors.
func (ec *EmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	em := ec.client.EmbeddingModel(ec.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("batch embed: empty embedding at position %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedText embeds a single text, the query-path convenience form.
func (ec *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	em := ec.client.EmbeddingModel(ec.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed: no embedding returned")
	}
	return resp.Embedding.Values, nil
}
