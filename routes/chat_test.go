package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"legalcase-platform/internal/telemetry"
	"legalcase-platform/internal/vectorindex"
	"legalcase-platform/models"
	"legalcase-platform/services"
	"legalcase-platform/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeChatStore struct {
	project  *models.Project
	messages []models.ChatMessage
}

func (f *fakeChatStore) GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	if f.project != nil && f.project.ID == id {
		return f.project, nil
	}
	return nil, nil
}

func (f *fakeChatStore) InsertMessage(ctx context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeChatStore) ListMessagesByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.ChatMessage, error) {
	return f.messages, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

func (stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

type stubIndex struct {
	matches []vectorindex.Match
}

func (s stubIndex) Upsert(ctx context.Context, entries []vectorindex.Entry) error { return nil }

func (s stubIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	if topK < len(s.matches) {
		return s.matches[:topK], nil
	}
	return s.matches, nil
}

func (s stubIndex) Delete(ctx context.Context, ids []string) error { return nil }

type stubGenerator struct {
	response string
	err      error
}

func (s stubGenerator) GenerateAnswer(ctx context.Context, systemInstructions, userMessage string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newChatRouter(t *testing.T, store ChatStore, index stubIndex, gen stubGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("metrics error: %v", err)
	}
	retrieval := services.NewRetrievalEngine(stubEmbedder{}, index, 3)
	synthesizer := services.NewAnswerSynthesizer(gen)

	router := gin.New()
	router.POST("/api/chat", HandleChat(store, retrieval, synthesizer, metrics))
	return router
}

func postChat(t *testing.T, router *gin.Engine, projectID, question string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(models.ChatRequest{ProjectID: projectID, UserMessage: question})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChatGenerationFailure(t *testing.T) {
	project := &models.Project{ID: primitive.NewObjectID(), Title: "Smith v. Doe"}
	store := &fakeChatStore{project: project}
	index := stubIndex{matches: []vectorindex.Match{
		{ID: "d1-chunk-0", Score: 0.9, Metadata: vectorindex.ChunkMetadata{DocumentID: "d1", ChunkText: "docket 1:23-cv-456"}},
	}}
	router := newChatRouter(t, store, index, stubGenerator{err: errors.New("transport reset")})

	w := postChat(t, router, project.ID.Hex(), "What is the docket number?")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	var resp utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ErrorCode != string(services.KindGeneration) {
		t.Fatalf("error code = %q, want %q", resp.ErrorCode, services.KindGeneration)
	}
	if len(store.messages) != 0 {
		t.Fatalf("transcript written despite failed answer")
	}
}

func TestHandleChatEmptyGroundingSucceeds(t *testing.T) {
	project := &models.Project{ID: primitive.NewObjectID(), Title: "Smith v. Doe"}
	store := &fakeChatStore{project: project}
	router := newChatRouter(t, store, stubIndex{}, stubGenerator{response: "should not be used"})

	w := postChat(t, router, project.ID.Hex(), "Anything in the record?")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response != services.EmptyGroundingAnswer {
		t.Fatalf("response = %q, want canned empty-grounding answer", resp.Response)
	}
	if len(resp.RelevantChunks) != 0 {
		t.Fatalf("relevantChunks = %v, want empty", resp.RelevantChunks)
	}

	if len(store.messages) != 2 {
		t.Fatalf("persisted %d transcript turns, want 2", len(store.messages))
	}
	if store.messages[0].Sender != models.SenderUser || store.messages[1].Sender != models.SenderAI {
		t.Fatalf("transcript senders = %q, %q", store.messages[0].Sender, store.messages[1].Sender)
	}
}

func TestHandleChatUnknownProject(t *testing.T) {
	store := &fakeChatStore{}
	router := newChatRouter(t, store, stubIndex{}, stubGenerator{})

	w := postChat(t, router, primitive.NewObjectID().Hex(), "A question")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
