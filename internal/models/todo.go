package models

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

func IsValidStatus(status string) bool {
	return status == StatusPending || status == StatusCompleted
}

type Todo struct {
	ID          string
	ProjectID   string
	Description string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// ApplyStatus moves the todo to the given status at the given moment.
// Completing sets CompletedAt once; reverting to pending clears it.
// UpdatedAt is bumped even when the status does not change.
func (t *Todo) ApplyStatus(status string, now time.Time) {
	switch status {
	case StatusCompleted:
		if t.Status != StatusCompleted {
			completedAt := now
			t.CompletedAt = &completedAt
		}
	case StatusPending:
		t.CompletedAt = nil
	}
	t.Status = status
	t.UpdatedAt = now
}
