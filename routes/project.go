package routes

import (
	"net/http"

	"legalcase-platform/internal/database"
	"legalcase-platform/models"
	"legalcase-platform/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleCreateProject creates a new case project.
func HandleCreateProject(store *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid project payload", err.Error())
			return
		}

		project := &models.Project{
			Title:        req.Title,
			DocketNumber: req.DocketNumber,
			Description:  req.Description,
		}
		if err := store.CreateProject(c.Request.Context(), project); err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

// HandleGetProject returns one project by id.
func HandleGetProject(store *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("projectId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid project id", nil)
			return
		}

		project, err := store.GetProject(c.Request.Context(), id)
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		if project == nil {
			utils.RespondWithNotFound(c, "Project not found.")
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

// HandleListProjects returns all projects, newest first.
func HandleListProjects(store *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := store.ListProjects(c.Request.Context())
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

// HandleListProjectDocuments lists a project's documents without their
// full content.
func HandleListProjectDocuments(store *database.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("projectId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid project id", nil)
			return
		}

		documents, err := store.ListDocumentsByProject(c.Request.Context(), id)
		if err != nil {
			utils.RespondWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, documents)
	}
}
