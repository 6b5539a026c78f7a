package dto

import (
	"time"

	"taskboard/internal/domain"
)

// CreateTodoRequest is the JSON body for POST /todos. Status, id,
// timestamps and createdBy are store-assigned and not accepted here.
type CreateTodoRequest struct {
	Title       string          `json:"title" binding:"required,max=120"`
	Description string          `json:"description" binding:"max=1000"`
	Priority    domain.Priority `json:"priority" binding:"required,oneof=low medium high"`
	AssignedTo  int64           `json:"assignedTo"`
}

// UpdateTodoRequest is the JSON body for PATCH /todos/:id.
// nil = leave as is, value = set. Identity fields (id, createdBy,
// createdAt) are deliberately not representable here.
type UpdateTodoRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=120"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	Status      *domain.Status   `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	Priority    *domain.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	AssignedTo  *int64           `json:"assignedTo"`
}

type TodoResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	AssignedTo  int64           `json:"assignedTo"`
	CreatedBy   int64           `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}

type DeleteTodoResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsResponse is the derived summary of the current collection.
type StatsResponse struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"inProgress"`
	Pending        int     `json:"pending"`
	HighPriority   int     `json:"highPriority"`
	CompletionRate float64 `json:"completionRate"`
}
