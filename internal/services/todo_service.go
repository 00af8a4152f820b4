package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/akarpov/projecttodo/internal/models"
)

type todoServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTodoService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TodoService {
	return &todoServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *todoServiceImpl) AddTodo(ctx context.Context, userID, projectID, description string) (*models.Todo, error) {
	// Resolve the parent project through its owner before touching
	// anything else.
	const selectProjectQuery = `
SELECT 1
FROM projects
WHERE id = $1 AND user_id = $2
`
	var one int
	err := s.pgPool.QueryRow(
		ctx,
		selectProjectQuery,
		projectID,
		userID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("project_id", projectID).
				Str("user_id", userID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select project")
		return nil, err
	}

	now := time.Now()
	todo := models.Todo{
		ProjectID:   projectID,
		Description: description,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	todoUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate todo uuid")
		return nil, err
	}
	todo.ID = todoUUID.String()

	const insertTodoQuery = `
INSERT INTO todos (id,
                   project_id,
                   description,
                   status,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTodoQuery,
		todo.ID,
		todo.ProjectID,
		todo.Description,
		todo.Status,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert todo")
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Str("project_id", todo.ProjectID).
		Msg("added todo")
	return &todo, nil
}

func (s *todoServiceImpl) UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error) {
	if params.Status != nil && !models.IsValidStatus(*params.Status) {
		s.logger.Debug().
			Str("status", *params.Status).
			Msg("invalid todo status")
		return nil, ErrInvalidTodoStatus
	}

	todo := models.Todo{
		ID: params.TodoID,
	}

	const selectTodoQuery = `
SELECT t.project_id,
       t.description,
       t.status,
       t.created_at,
       t.updated_at,
       t.completed_at
FROM todos t
         JOIN projects p ON p.id = t.project_id
WHERE t.id = $1
  AND p.user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTodoQuery,
		todo.ID,
		params.UserID,
	).Scan(
		&todo.ProjectID,
		&todo.Description,
		&todo.Status,
		&todo.CreatedAt,
		&todo.UpdatedAt,
		&todo.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("todo_id", todo.ID).
				Str("user_id", params.UserID).
				Msg("todo not found")
			return nil, ErrTodoNotFound
		}

		s.logger.Error().
			Err(err).
			Str("todo_id", todo.ID).
			Msg("failed to select todo")
		return nil, err
	}

	now := time.Now()
	if params.Description != nil {
		todo.Description = *params.Description
	}
	if params.Status != nil {
		todo.ApplyStatus(*params.Status, now)
	}
	// A write with no effective change still bumps the timestamp.
	todo.UpdatedAt = now

	const updateTodoQuery = `
UPDATE todos
SET description = $1,
    status = $2,
    updated_at = $3,
    completed_at = $4
WHERE id = $5
`
	_, err = s.pgPool.Exec(
		ctx,
		updateTodoQuery,
		todo.Description,
		todo.Status,
		todo.UpdatedAt,
		todo.CompletedAt,
		todo.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("todo_id", todo.ID).
			Msg("failed to update todo")
		return nil, err
	}

	s.logger.Info().
		Str("todo_id", todo.ID).
		Str("status", todo.Status).
		Msg("updated todo")
	return &todo, nil
}

func (s *todoServiceImpl) DeleteTodo(ctx context.Context, userID, todoID string) error {
	const deleteTodoQuery = `
DELETE FROM todos t
       USING projects p
WHERE t.id = $1
  AND p.id = t.project_id
  AND p.user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTodoQuery,
		todoID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("todo_id", todoID).
			Msg("failed to delete todo")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug().
			Str("todo_id", todoID).
			Str("user_id", userID).
			Msg("todo not found")
		return ErrTodoNotFound
	}

	s.logger.Info().
		Str("todo_id", todoID).
		Str("user_id", userID).
		Msg("deleted todo")
	return nil
}
