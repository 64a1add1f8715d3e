package utils

import (
	"net/http"

	"legalcase-platform/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithServiceError maps a pipeline error to an HTTP response.
// Invalid input is the caller's fault; upstream collaborator failures map
// to 502 so clients can tell them apart from bugs in this service.
func RespondWithServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindInvalidInput:
		RespondWithError(c, http.StatusBadRequest, string(kind), err.Error(), nil)
	case services.KindEmbedding, services.KindIndex, services.KindGeneration:
		RespondWithError(c, http.StatusBadGateway, string(kind), err.Error(), nil)
	case services.KindRecordStore:
		RespondWithError(c, http.StatusInternalServerError, string(kind), err.Error(), nil)
	default:
		RespondWithInternalError(c, err.Error(), nil)
	}
}
