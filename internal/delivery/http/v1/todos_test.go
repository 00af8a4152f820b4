package v1

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/akarpov/projecttodo/internal/models"
)

func addTodo(t *testing.T, env *testEnv, header, projectID, description string) todoResponse {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/v1/todos/"+projectID,
		`{"description":"`+description+`"}`, header)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add todo: status = %d, body = %s", rec.Code, rec.Body)
	}

	var todo todoResponse
	decodeBody(t, rec, &todo)
	return todo
}

func TestAddTodo(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")
	project := createProject(t, env, header, "P1")

	todo := addTodo(t, env, header, project.ID, "buy milk")
	if todo.Description != "buy milk" {
		t.Errorf("description = %q", todo.Description)
	}
	if todo.Status != models.StatusPending {
		t.Errorf("status = %q, want pending by default", todo.Status)
	}
	if todo.CompletedAt != nil {
		t.Errorf("completed at = %v, want nil", todo.CompletedAt)
	}
	if todo.ProjectID != project.ID {
		t.Errorf("project id = %q, want %q", todo.ProjectID, project.ID)
	}
}

func TestAddTodoToForeignProject(t *testing.T) {
	env := newTestEnv()
	aliceHeader := env.register(t, "alice", "secret1")
	bobHeader := env.register(t, "bob", "secret2")
	project := createProject(t, env, aliceHeader, "P1")

	rec := env.do(t, http.MethodPost, "/api/v1/todos/"+project.ID,
		`{"description":"sneaky"}`, bobHeader)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Project not found" {
		t.Errorf("error = %q", msg)
	}
}

func TestAddTodoValidation(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")
	project := createProject(t, env, header, "P1")

	rec := env.do(t, http.MethodPost, "/api/v1/todos/"+project.ID, `{}`, header)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing description: status = %d, want 400", rec.Code)
	}
}

func TestUpdateTodoStatusLifecycle(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")
	project := createProject(t, env, header, "P1")
	todo := addTodo(t, env, header, project.ID, "buy milk")

	t.Run("completing sets completed_at", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
			`{"status":"completed"}`, header)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}

		var updated todoResponse
		decodeBody(t, rec, &updated)
		if updated.Status != models.StatusCompleted {
			t.Errorf("status = %q", updated.Status)
		}
		if updated.CompletedAt == nil {
			t.Error("completed at is nil after completing")
		}
	})

	t.Run("reverting clears completed_at", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
			`{"status":"pending"}`, header)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}

		var updated todoResponse
		decodeBody(t, rec, &updated)
		if updated.Status != models.StatusPending {
			t.Errorf("status = %q", updated.Status)
		}
		if updated.CompletedAt != nil {
			t.Errorf("completed at = %v, want nil", updated.CompletedAt)
		}
	})

	t.Run("invalid status is a 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
			`{"status":"archived"}`, header)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("empty description is a 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
			`{"description":""}`, header)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestUpdateTodoDescription(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")
	project := createProject(t, env, header, "P1")
	todo := addTodo(t, env, header, project.ID, "buy milk")

	rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
		`{"description":"buy oat milk"}`, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var updated todoResponse
	decodeBody(t, rec, &updated)
	if updated.Description != "buy oat milk" {
		t.Errorf("description = %q", updated.Description)
	}
	if updated.Status != models.StatusPending {
		t.Errorf("status changed to %q by a description update", updated.Status)
	}
}

func TestUpdateTodoOwnership(t *testing.T) {
	env := newTestEnv()
	aliceHeader := env.register(t, "alice", "secret1")
	bobHeader := env.register(t, "bob", "secret2")
	project := createProject(t, env, aliceHeader, "P1")
	todo := addTodo(t, env, aliceHeader, project.ID, "buy milk")

	rec := env.do(t, http.MethodPut, "/api/v1/todos/"+todo.ID,
		`{"status":"completed"}`, bobHeader)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Todo not found in your projects" {
		t.Errorf("error = %q", msg)
	}
}

func TestDeleteTodo(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")
	project := createProject(t, env, header, "P1")
	todo := addTodo(t, env, header, project.ID, "buy milk")

	rec := env.do(t, http.MethodDelete, "/api/v1/todos/"+todo.ID, "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/todos/"+todo.ID, "", header)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestDeleteTodoNotFound(t *testing.T) {
	env := newTestEnv()
	header := env.register(t, "alice", "secret1")

	t.Run("unknown id", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/todos/"+uuid.NewString(), "", header)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("syntactically invalid id", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/v1/todos/not-a-uuid", "", header)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}
