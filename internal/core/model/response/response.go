package response

import (
	"time"

	"todoapi/internal/core/domain"
)

type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewTodoResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		OwnerID:     todo.OwnerID,
		Completed:   todo.Completed,
		CreatedAt:   todo.CreatedAt,
	}
}

func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	items := make([]TodoResponse, 0, len(todos))

	for _, todo := range todos {
		items = append(items, NewTodoResponse(todo))
	}

	return items
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}
