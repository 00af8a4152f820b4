package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akarpov/projecttodo/internal/models"
	"github.com/akarpov/projecttodo/internal/services"
)

type todoResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newTodoResponse(todo *models.Todo) todoResponse {
	return todoResponse{
		ID:          todo.ID,
		ProjectID:   todo.ProjectID,
		Description: todo.Description,
		Status:      todo.Status,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
		CompletedAt: todo.CompletedAt,
	}
}

type projectResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Todos     []todoResponse `json:"todos"`
	CreatedAt time.Time      `json:"created_at"`
}

func newProjectResponse(project *models.Project) projectResponse {
	todos := make([]todoResponse, len(project.Todos))
	for i, todo := range project.Todos {
		todos[i] = newTodoResponse(todo)
	}
	return projectResponse{
		ID:        project.ID,
		Title:     project.Title,
		Todos:     todos,
		CreatedAt: project.CreatedAt,
	}
}

type projectTitleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	var req projectTitleRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abortWithBindingError(c, err)
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), userID, req.Title)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create project")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

func (h *handlerImpl) HandleGetProjects(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projects, err := h.projects.GetProjects(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get projects")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]projectResponse, len(projects))
	for i, project := range projects {
		response[i] = newProjectResponse(project)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetProject(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	project, err := h.projects.GetProjectByID(c.Request.Context(), userID, projectID)
	if err != nil {
		h.abortProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *handlerImpl) HandleUpdateProject(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req projectTitleRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abortWithBindingError(c, err)
		return
	}

	project, err := h.projects.UpdateProjectTitle(c.Request.Context(), userID, projectID, req.Title)
	if err != nil {
		h.abortProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	err := h.projects.DeleteProject(c.Request.Context(), userID, projectID)
	if err != nil {
		h.abortProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (h *handlerImpl) HandleExportProject(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	gistURL, err := h.export.ExportProjectSummary(c.Request.Context(), userID, projectID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			abort(c, newNotFoundError("Project not found"))
			return
		}

		// Gist service failures surface as a plain 500; the detail is
		// logged, not echoed back.
		h.logger.Error().
			Err(err).
			Msg("failed to export project summary")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Gist created successfully",
		"gist_url": gistURL,
	})
}

func (h *handlerImpl) abortProjectError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrProjectNotFound) {
		abort(c, newNotFoundError("Project not found"))
		return
	}

	h.logger.Error().
		Err(err).
		Msg("project operation failed")
	abort(c, newStatusTextError(http.StatusInternalServerError))
}

// projectIDParam reports a syntactically invalid id the same way as a
// missing project, to keep the no-existence-leak policy uniform.
func projectIDParam(c *gin.Context) (string, bool) {
	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		abort(c, newNotFoundError("Project not found"))
		return "", false
	}
	return projectID, true
}
