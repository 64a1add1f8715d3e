// Package pinecone is a minimal REST client for a Pinecone index,
// covering the upsert, query and delete operations the ingestion and
// retrieval pipelines need.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"legalcase-platform/internal/vectorindex"
)

// Index is a client scoped to one Pinecone index (and optionally one
// namespace within it). Safe for concurrent use.
type Index struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

type Config struct {
	Host      string // index host URL, e.g. https://legalcase-index-xxxx.svc.pinecone.io
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

func NewIndex(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		return nil, errors.New("pinecone: missing index host")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("pinecone: missing API key")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Index{
		host:      cfg.Host,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type upsertVector struct {
	ID       string                    `json:"id"`
	Values   []float32                 `json:"values"`
	Metadata vectorindex.ChunkMetadata `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace,omitempty"`
}

// Upsert writes the entries into the index, overwriting by id.
func (ix *Index) Upsert(ctx context.Context, entries []vectorindex.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	vectors := make([]upsertVector, len(entries))
	for i, e := range entries {
		vectors[i] = upsertVector{ID: e.ID, Values: e.Values, Metadata: e.Metadata}
	}
	req := upsertRequest{Vectors: vectors, Namespace: ix.namespace}
	return ix.postJSON(ctx, "/vectors/upsert", req, nil)
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string                    `json:"id"`
		Score    float64                   `json:"score"`
		Metadata vectorindex.ChunkMetadata `json:"metadata"`
	} `json:"matches"`
}

// Query returns up to topK entries nearest to the given vector, ordered by
// descending similarity. An empty or absent index yields an empty slice.
func (ix *Index) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("pinecone: topK must be >= 1, got %d", topK)
	}
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       ix.namespace,
	}
	var resp queryResponse
	if err := ix.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}
	matches := make([]vectorindex.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, vectorindex.Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

// Delete removes the entries with the given ids. Unknown ids are ignored by
// the service, which makes this safe to use as a compensation step.
func (ix *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return ix.postJSON(ctx, "/vectors/delete", deleteRequest{IDs: ids, Namespace: ix.namespace}, nil)
}

func (ix *Index) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("pinecone: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ix.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("pinecone: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", ix.apiKey)

	resp, err := ix.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pinecone: POST %s failed: %s: %s", path, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("pinecone: decode %s response: %w", path, err)
		}
	}
	return nil
}
