package services

import (
	"context"
	"errors"

	"github.com/akarpov/projecttodo/internal/gist"
	"github.com/akarpov/projecttodo/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username already exists")
	ErrPasswordMismatch  = errors.New("invalid credentials")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTodoNotFound      = errors.New("todo not found in your projects")
	ErrInvalidTodoStatus = errors.New("invalid todo status")
)

type UserService interface {
	// Register stores a new user with a salted one-way password hash.
	// The hash is derived once here; it is recomputed only when the
	// password itself changes, never on unrelated updates.
	//
	// It returns ErrUserAlreadyExists if the username is taken.
	Register(ctx context.Context, username, password string) (*models.User, error)

	// GetByUsername returns the user record or ErrUserNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Authenticate resolves the credential pair to a user. It returns
	// ErrUserNotFound for an unknown username and ErrPasswordMismatch
	// when the password fails verification.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// ProjectService owns the project lifecycle. Every operation takes the
// acting user's id and treats a project that exists but belongs to
// someone else exactly like a missing one, so callers cannot probe for
// other users' resources.
type ProjectService interface {
	CreateProject(ctx context.Context, userID, title string) (*models.Project, error)
	GetProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetProjectByID(ctx context.Context, userID, projectID string) (*models.Project, error)
	UpdateProjectTitle(ctx context.Context, userID, projectID, title string) (*models.Project, error)

	// DeleteProject removes the project and all of its todos in a
	// single transaction.
	DeleteProject(ctx context.Context, userID, projectID string) error
}

type TodoService interface {
	// AddTodo attaches a new pending todo to the project after checking
	// that the project belongs to the user.
	AddTodo(ctx context.Context, userID, projectID, description string) (*models.Todo, error)

	// UpdateTodo changes the description and/or status of a todo whose
	// parent project belongs to the user. A status transition to
	// completed stamps CompletedAt; back to pending clears it. The
	// update timestamp is bumped even when nothing else changes.
	UpdateTodo(ctx context.Context, params UpdateTodoParams) (*models.Todo, error)

	DeleteTodo(ctx context.Context, userID, todoID string) error
}

type UpdateTodoParams struct {
	UserID      string
	TodoID      string
	Description *string
	Status      *string
}

// GistClient publishes a set of files to an external gist service.
type GistClient interface {
	CreateGist(ctx context.Context, description string, files map[string]gist.File, public bool) (*gist.Gist, error)
}

type ExportService interface {
	// ExportProjectSummary renders the project's todos to markdown,
	// optionally writes it to a local file and publishes it as a
	// secret gist. It returns the gist URL.
	ExportProjectSummary(ctx context.Context, userID, projectID string) (string, error)
}
