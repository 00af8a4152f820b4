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

type projectServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewProjectService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) ProjectService {
	return &projectServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, userID, title string) (*models.Project, error) {
	project := models.Project{
		UserID:    userID,
		Title:     title,
		Todos:     []*models.Todo{},
		CreatedAt: time.Now(),
	}

	projectUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate project uuid")
		return nil, err
	}
	project.ID = projectUUID.String()

	const insertProjectQuery = `
INSERT INTO projects (id,
                      user_id,
                      title,
                      created_at)
VALUES ($1, $2, $3, $4)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertProjectQuery,
		project.ID,
		project.UserID,
		project.Title,
		project.CreatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("created project")
	return &project, nil
}

func (s *projectServiceImpl) GetProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	const selectProjectsByUserIDQuery = `
SELECT id,
       title,
       created_at
FROM projects
WHERE user_id = $1
ORDER BY created_at
`
	rows, err := s.pgPool.Query(
		ctx,
		selectProjectsByUserIDQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select projects by user id")
		return nil, err
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project := &models.Project{UserID: userID}
		err = rows.Scan(
			&project.ID,
			&project.Title,
			&project.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan project")
			return nil, err
		}
		projects = append(projects, project)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	// Close before loading todos; nested queries during iteration can
	// exhaust the pool.
	rows.Close()

	for _, project := range projects {
		project.Todos, err = s.loadTodos(ctx, project.ID)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug().
		Int("count", len(projects)).
		Str("user_id", userID).
		Msg("selected projects by user id")
	return projects, nil
}

func (s *projectServiceImpl) GetProjectByID(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project := models.Project{
		ID:     projectID,
		UserID: userID,
	}

	const selectProjectQuery = `
SELECT title,
       created_at
FROM projects
WHERE id = $1 AND user_id = $2
`
	err := s.pgPool.QueryRow(
		ctx,
		selectProjectQuery,
		project.ID,
		project.UserID,
	).Scan(
		&project.Title,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing and not-owned are indistinguishable on purpose.
			s.logger.Debug().
				Str("project_id", project.ID).
				Str("user_id", project.UserID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to select project")
		return nil, err
	}

	project.Todos, err = s.loadTodos(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("project_id", project.ID).
		Int("todos", len(project.Todos)).
		Msg("selected project")
	return &project, nil
}

func (s *projectServiceImpl) UpdateProjectTitle(ctx context.Context, userID, projectID, title string) (*models.Project, error) {
	project := models.Project{
		ID:     projectID,
		UserID: userID,
		Title:  title,
	}

	const updateProjectTitleQuery = `
UPDATE projects
SET title = $1
WHERE id = $2 AND user_id = $3
RETURNING created_at
`
	err := s.pgPool.QueryRow(
		ctx,
		updateProjectTitleQuery,
		project.Title,
		project.ID,
		project.UserID,
	).Scan(&project.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("project_id", project.ID).
				Str("user_id", project.UserID).
				Msg("project not found")
			return nil, ErrProjectNotFound
		}

		s.logger.Error().
			Err(err).
			Str("project_id", project.ID).
			Msg("failed to update project title")
		return nil, err
	}

	project.Todos, err = s.loadTodos(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Str("user_id", project.UserID).
		Msg("updated project title")
	return &project, nil
}

func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID string) error {
	// The cascade must be atomic: a project must never survive without
	// its todos or vice versa.
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteTodosQuery = `
DELETE FROM todos
WHERE project_id IN (SELECT id
                     FROM projects
                     WHERE id = $1 AND user_id = $2)
`
	todosTag, err := tx.Exec(
		ctx,
		deleteTodosQuery,
		projectID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to delete project todos")
		return err
	}

	const deleteProjectQuery = `
DELETE FROM projects
WHERE id = $1 AND user_id = $2
`
	projectTag, err := tx.Exec(
		ctx,
		deleteProjectQuery,
		projectID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to delete project")
		return err
	}
	if projectTag.RowsAffected() == 0 {
		s.logger.Debug().
			Str("project_id", projectID).
			Str("user_id", userID).
			Msg("project not found")
		return ErrProjectNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("user_id", userID).
		Int64("todos_deleted", todosTag.RowsAffected()).
		Msg("deleted project")
	return nil
}

func (s *projectServiceImpl) loadTodos(ctx context.Context, projectID string) ([]*models.Todo, error) {
	const selectTodosByProjectIDQuery = `
SELECT id,
       description,
       status,
       created_at,
       updated_at,
       completed_at
FROM todos
WHERE project_id = $1
ORDER BY created_at
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTodosByProjectIDQuery,
		projectID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to select todos by project id")
		return nil, err
	}
	defer rows.Close()

	todos := make([]*models.Todo, 0)
	for rows.Next() {
		todo := &models.Todo{ProjectID: projectID}
		err = rows.Scan(
			&todo.ID,
			&todo.Description,
			&todo.Status,
			&todo.CreatedAt,
			&todo.UpdatedAt,
			&todo.CompletedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan todo")
			return nil, err
		}
		todos = append(todos, todo)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	return todos, nil
}
