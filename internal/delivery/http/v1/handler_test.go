package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akarpov/projecttodo/internal/auth"
	"github.com/akarpov/projecttodo/internal/models"
	"github.com/akarpov/projecttodo/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUserService keeps plaintext passwords in a map; the handlers only
// ever see the typed errors, so hashing is irrelevant here.
type fakeUserService struct {
	users map[string]string // username -> password
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{users: make(map[string]string)}
}

func (f *fakeUserService) Register(_ context.Context, username, password string) (*models.User, error) {
	if _, ok := f.users[username]; ok {
		return nil, services.ErrUserAlreadyExists
	}
	f.users[username] = password
	return &models.User{ID: "id-" + username, Username: username, CreatedAt: time.Now()}, nil
}

func (f *fakeUserService) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if _, ok := f.users[username]; !ok {
		return nil, services.ErrUserNotFound
	}
	return &models.User{ID: "id-" + username, Username: username}, nil
}

func (f *fakeUserService) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	stored, ok := f.users[username]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	if stored != password {
		return nil, services.ErrPasswordMismatch
	}
	return &models.User{ID: "id-" + username, Username: username}, nil
}

// fakeProjectService enforces the same missing-or-not-owned conflation
// as the real one.
type fakeProjectService struct {
	projects map[string]*models.Project
}

func newFakeProjectService() *fakeProjectService {
	return &fakeProjectService{projects: make(map[string]*models.Project)}
}

func (f *fakeProjectService) CreateProject(_ context.Context, userID, title string) (*models.Project, error) {
	project := &models.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Todos:     []*models.Todo{},
		CreatedAt: time.Now(),
	}
	f.projects[project.ID] = project
	return project, nil
}

func (f *fakeProjectService) GetProjects(_ context.Context, userID string) ([]*models.Project, error) {
	projects := make([]*models.Project, 0)
	for _, p := range f.projects {
		if p.UserID == userID {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func (f *fakeProjectService) GetProjectByID(_ context.Context, userID, projectID string) (*models.Project, error) {
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, services.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjectService) UpdateProjectTitle(_ context.Context, userID, projectID, title string) (*models.Project, error) {
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, services.ErrProjectNotFound
	}
	p.Title = title
	return p, nil
}

func (f *fakeProjectService) DeleteProject(_ context.Context, userID, projectID string) error {
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return services.ErrProjectNotFound
	}
	delete(f.projects, projectID)
	return nil
}

type fakeTodoService struct {
	projects *fakeProjectService
	todos    map[string]*models.Todo
}

func newFakeTodoService(projects *fakeProjectService) *fakeTodoService {
	return &fakeTodoService{projects: projects, todos: make(map[string]*models.Todo)}
}

func (f *fakeTodoService) AddTodo(ctx context.Context, userID, projectID, description string) (*models.Todo, error) {
	if _, err := f.projects.GetProjectByID(ctx, userID, projectID); err != nil {
		return nil, err
	}
	now := time.Now()
	todo := &models.Todo{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Description: description,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.todos[todo.ID] = todo
	return todo, nil
}

func (f *fakeTodoService) UpdateTodo(ctx context.Context, params services.UpdateTodoParams) (*models.Todo, error) {
	if params.Status != nil && !models.IsValidStatus(*params.Status) {
		return nil, services.ErrInvalidTodoStatus
	}
	todo, ok := f.todos[params.TodoID]
	if !ok {
		return nil, services.ErrTodoNotFound
	}
	if _, err := f.projects.GetProjectByID(ctx, params.UserID, todo.ProjectID); err != nil {
		return nil, services.ErrTodoNotFound
	}
	now := time.Now()
	if params.Description != nil {
		todo.Description = *params.Description
	}
	if params.Status != nil {
		todo.ApplyStatus(*params.Status, now)
	}
	todo.UpdatedAt = now
	return todo, nil
}

func (f *fakeTodoService) DeleteTodo(ctx context.Context, userID, todoID string) error {
	todo, ok := f.todos[todoID]
	if !ok {
		return services.ErrTodoNotFound
	}
	if _, err := f.projects.GetProjectByID(ctx, userID, todo.ProjectID); err != nil {
		return services.ErrTodoNotFound
	}
	delete(f.todos, todoID)
	return nil
}

type fakeExportService struct {
	projects *fakeProjectService
	url      string
	err      error
}

func (f *fakeExportService) ExportProjectSummary(ctx context.Context, userID, projectID string) (string, error) {
	if _, err := f.projects.GetProjectByID(ctx, userID, projectID); err != nil {
		return "", err
	}
	return f.url, f.err
}

type testEnv struct {
	router   *gin.Engine
	users    *fakeUserService
	projects *fakeProjectService
	todos    *fakeTodoService
	export   *fakeExportService
}

func newTestEnv() *testEnv {
	users := newFakeUserService()
	projects := newFakeProjectService()
	todos := newFakeTodoService(projects)
	export := &fakeExportService{projects: projects, url: "https://gist.example.com/1"}

	logger := zerolog.Nop()
	handler := New(
		logger,
		auth.NewAuthenticator(logger, users),
		users,
		projects,
		todos,
		export,
	)

	router := gin.New()
	RegisterRoutes(router, handler)

	return &testEnv{
		router:   router,
		users:    users,
		projects: projects,
		todos:    todos,
		export:   export,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", string(body), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", username, rec.Code, rec.Body)
	}

	var resp struct {
		Authorization string `json:"authorization"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Authorization
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body, err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	return resp.Error
}
