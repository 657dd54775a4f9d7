package factory

import (
	"time"

	fab "github.com/Goldziher/fabricator"

	"todoapi/internal/core/domain"
)

// NewTodo builds an unsaved todo with random content. customData overrides
// fields by name, e.g. {"OwnerID": "uid-1"}.
func NewTodo(customData ...map[string]any) domain.Todo {
	instance := fab.New(domain.Todo{})

	todo := instance.Build(customData...)
	todo.ID = ""
	todo.Completed = false
	todo.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if todo.Title == "" {
		todo.Title = "Untitled"
	}

	return todo
}
