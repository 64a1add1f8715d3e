package routes

import (
	"context"
	"net/http"
	"time"

	"legalcase-platform/internal/logger"
	"legalcase-platform/internal/telemetry"
	"legalcase-platform/models"
	"legalcase-platform/services"
	"legalcase-platform/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatStore is the store surface the chat handlers need.
type ChatStore interface {
	GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	InsertMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessagesByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.ChatMessage, error)
}

// HandleChat answers a question grounded on the project's ingested
// documents and appends both turns to the chat transcript.
func HandleChat(store ChatStore, retrieval *services.RetrievalEngine, synthesizer *services.AnswerSynthesizer, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Missing projectId or userMessage.", err.Error())
			return
		}

		projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid project id", nil)
			return
		}
		project, err := store.GetProject(c.Request.Context(), projectID)
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		if project == nil {
			utils.RespondWithNotFound(c, "Project not found.")
			return
		}

		retrievalStart := time.Now()
		retrieved, err := retrieval.Retrieve(c.Request.Context(), req.UserMessage)
		if err != nil {
			metrics.RecordQuestion(false, time.Since(retrievalStart).Seconds(), 0, false)
			utils.RespondWithServiceError(c, err)
			return
		}
		retrievalSecs := time.Since(retrievalStart).Seconds()

		generationStart := time.Now()
		answer, err := synthesizer.Synthesize(c.Request.Context(), req.UserMessage, retrieved)
		if err != nil {
			metrics.RecordQuestion(len(retrieved.Chunks) > 0, retrievalSecs, time.Since(generationStart).Seconds(), false)
			utils.RespondWithServiceError(c, err)
			return
		}
		metrics.RecordQuestion(len(answer.Chunks) > 0, retrievalSecs, time.Since(generationStart).Seconds(), true)

		// Transcript writes happen after the answer exists. A failed write
		// is logged but does not turn a good answer into an error.
		now := time.Now()
		userMsg := &models.ChatMessage{ProjectID: projectID, Sender: models.SenderUser, Text: req.UserMessage, CreatedAt: now}
		if err := store.InsertMessage(c.Request.Context(), userMsg); err != nil {
			logger.Error("Failed to persist user message", "project_id", projectID.Hex(), "error", err)
		}
		aiMsg := &models.ChatMessage{ProjectID: projectID, Sender: models.SenderAI, Text: answer.Response, CreatedAt: now}
		if err := store.InsertMessage(c.Request.Context(), aiMsg); err != nil {
			logger.Error("Failed to persist ai message", "project_id", projectID.Hex(), "error", err)
		}

		chunks := make([]string, len(answer.Chunks))
		for i, ch := range answer.Chunks {
			chunks[i] = ch.Text
		}
		c.JSON(http.StatusOK, models.ChatResponse{
			Response:       answer.Response,
			RelevantChunks: chunks,
			Timestamp:      now,
		})
	}
}

// HandleChatHistory returns the project transcript in chronological order.
func HandleChatHistory(store ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := primitive.ObjectIDFromHex(c.Param("projectId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid project id", nil)
			return
		}

		messages, err := store.ListMessagesByProject(c.Request.Context(), projectID, 200)
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}
