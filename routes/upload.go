package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"legalcase-platform/internal/config"
	"legalcase-platform/internal/database"
	"legalcase-platform/internal/queue"
	"legalcase-platform/internal/telemetry"
	"legalcase-platform/models"
	"legalcase-platform/services"
	"legalcase-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleDocumentUpload ingests a document posted as JSON content. The
// response is returned only after the document is chunked, embedded,
// indexed and persisted.
func HandleDocumentUpload(store *database.Store, ingestion *services.IngestionService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UploadDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Missing projectId or document content.", err.Error())
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

		start := time.Now()
		result, err := ingestion.IngestDocument(c.Request.Context(), services.IngestInput{
			ProjectID: projectID,
			FileName:  req.FileName,
			Category:  req.Category,
			Content:   req.Content,
		})
		if err != nil {
			metrics.RecordIngestion(req.Category, 0, time.Since(start).Seconds(), false)
			utils.RespondWithServiceError(c, err)
			return
		}
		metrics.RecordIngestion(req.Category, result.ChunkCount, time.Since(start).Seconds(), true)

		c.JSON(http.StatusOK, models.UploadDocumentResponse{
			Message:    "File uploaded & embedded successfully.",
			DocID:      result.DocumentID,
			ChunkCount: result.ChunkCount,
		})
	}
}

// HandleFileUpload accepts a multipart PDF upload, stores the file, and
// queues it for background ingestion. Returns 202 with an upload id the
// client can poll.
func HandleFileUpload(cfg *config.Config, store *database.Store, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.PostForm("projectId")
		if _, err := primitive.ObjectIDFromHex(projectID); err != nil {
			utils.RespondWithBadRequest(c, "Missing or invalid projectId", nil)
			return
		}
		category := c.PostForm("category")
		if category == "" {
			category = models.CategoryOther
		}
		if !models.ValidCategory(category) {
			utils.RespondWithBadRequest(c, "Unknown document category", gin.H{"category": category})
			return
		}

		if err := c.Request.ParseMultipartForm(cfg.MaxFileSize); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "file_too_large",
				"File size exceeds maximum limit", nil)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided", nil)
			return
		}
		defer file.Close()

		ct := header.Header.Get("Content-Type")
		if !strings.Contains(ct, "pdf") && !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_file_type",
				"Only PDF files are allowed", nil)
			return
		}
		if header.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusBadRequest, "file_too_large",
				"File size exceeds maximum limit", nil)
			return
		}

		headerBuf := make([]byte, 5)
		if _, err := io.ReadFull(file, headerBuf); err != nil || string(headerBuf[:4]) != "%PDF" {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_pdf",
				"File does not appear to be a valid PDF", nil)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			utils.RespondWithInternalError(c, "Failed to reset file for saving", nil)
			return
		}

		uploadID := uuid.NewString()
		uploadDir := filepath.Join(cfg.FileStorageDir, "uploads", projectID)
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			utils.RespondWithInternalError(c, "Failed to create upload directory", nil)
			return
		}

		filePath := filepath.Join(uploadDir, fmt.Sprintf("%s.pdf", uploadID))
		dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to open destination", nil)
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, io.LimitReader(file, cfg.MaxFileSize)); err != nil {
			utils.RespondWithInternalError(c, "Failed to save file", nil)
			return
		}

		ctx := context.Background()
		upload := &models.Upload{
			ID:        uploadID,
			ProjectID: projectID,
			FileName:  header.Filename,
			Category:  category,
			FilePath:  filePath,
			Size:      header.Size,
		}
		if err := store.CreateUpload(ctx, upload); err != nil {
			os.Remove(filePath)
			utils.RespondWithServiceError(c, err)
			return
		}

		task, err := queue.NewIngestDocumentTask(queue.IngestDocumentPayload{
			UploadID:  uploadID,
			ProjectID: projectID,
			FileName:  header.Filename,
			Category:  category,
			FilePath:  filePath,
		})
		if err == nil {
			_, err = queueClient.Enqueue(task)
		}
		if err != nil {
			// Undo the accepted upload so a poll can never find an
			// upload no worker will ever pick up.
			os.Remove(filePath)
			store.DeleteUploadRecord(ctx, uploadID)
			utils.RespondWithError(c, http.StatusInternalServerError, "queue_error",
				"Failed to enqueue ingestion task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"message":    "Upload accepted for ingestion",
			"upload_id":  uploadID,
			"status":     models.UploadStatusPending,
			"filename":   header.Filename,
			"size":       header.Size,
			"created_at": upload.CreatedAt,
		})
	}
}

// HandleUploadStatus reports where a queued upload is in the pipeline.
func HandleUploadStatus(store *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		upload, err := store.GetUpload(c.Request.Context(), c.Param("uploadId"))
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		if upload == nil {
			utils.RespondWithNotFound(c, "Upload not found.")
			return
		}
		c.JSON(http.StatusOK, upload)
	}
}
