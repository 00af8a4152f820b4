package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akarpov/projecttodo/internal/services"
)

type addTodoRequest struct {
	Description string `json:"description" binding:"required,max=1024"`
}

func (h *handlerImpl) HandleAddTodo(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	projectID := c.Param("projectId")
	if _, err := uuid.Parse(projectID); err != nil {
		abort(c, newNotFoundError("Project not found"))
		return
	}

	var req addTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abortWithBindingError(c, err)
		return
	}

	todo, err := h.todos.AddTodo(c.Request.Context(), userID, projectID, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			abort(c, newNotFoundError("Project not found"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to add todo")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusCreated, newTodoResponse(todo))
}

type updateTodoRequest struct {
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (h *handlerImpl) HandleUpdateTodo(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abortWithBindingError(c, err)
		return
	}

	if req.Description != nil && *req.Description == "" {
		abort(c, newBadRequestError("Description must not be empty"))
		return
	}

	todo, err := h.todos.UpdateTodo(c.Request.Context(), services.UpdateTodoParams{
		UserID:      userID,
		TodoID:      todoID,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTodoStatus):
			abort(c, newBadRequestError("Status must be pending or completed"))
		case errors.Is(err, services.ErrTodoNotFound):
			abort(c, newNotFoundError("Todo not found in your projects"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to update todo")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, newTodoResponse(todo))
}

func (h *handlerImpl) HandleDeleteTodo(c *gin.Context) {
	userID, exists := getUserIDFromContext(c)
	if !exists {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return
	}

	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	err := h.todos.DeleteTodo(c.Request.Context(), userID, todoID)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			abort(c, newNotFoundError("Todo not found in your projects"))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete todo")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

func todoIDParam(c *gin.Context) (string, bool) {
	todoID := c.Param("todoId")
	if _, err := uuid.Parse(todoID); err != nil {
		abort(c, newNotFoundError("Todo not found in your projects"))
		return "", false
	}
	return todoID, true
}
