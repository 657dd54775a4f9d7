package domain

import (
	"strings"
	"time"
)

type Todo struct {
	ID          string
	Title       string
	Description string
	OwnerID     string
	Completed   bool
	CreatedAt   time.Time
}

// TodoInput carries the client-writable fields of a todo.
type TodoInput struct {
	Title       string
	Description string
}

// TodoScope selects a single todo. An empty OwnerID leaves the lookup unscoped.
type TodoScope struct {
	ID      string
	OwnerID string
}

func (s TodoScope) IsOwned() bool {
	return s.OwnerID != ""
}

// NewTodo builds an unsaved todo owned by the verified identity.
func NewTodo(owner Identity, input TodoInput, now time.Time) (Todo, error) {
	if owner.Subject == "" {
		return Todo{}, ErrUnauthenticated
	}

	if input.Title == "" {
		return Todo{}, ErrTitleRequired
	}

	return Todo{
		Title:       input.Title,
		Description: input.Description,
		OwnerID:     owner.Subject,
		Completed:   false,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
	}, nil
}

func (t *Todo) BelongsTo(ownerID string) bool {
	return t.OwnerID == ownerID
}

// Apply overwrites title and description. Owner, id, completion and
// creation time never change after creation.
func (t *Todo) Apply(input TodoInput) {
	t.Title = input.Title
	t.Description = input.Description
}

type OwnershipPolicy string

const (
	// OwnershipStrict scopes update and delete to the caller's own todos.
	OwnershipStrict OwnershipPolicy = "strict"
	// OwnershipLegacy addresses todos by id alone, for any authenticated caller.
	OwnershipLegacy OwnershipPolicy = "legacy"
)

func ParseOwnershipPolicy(value string) (OwnershipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(OwnershipStrict):
		return OwnershipStrict, nil
	case string(OwnershipLegacy):
		return OwnershipLegacy, nil
	default:
		return "", NewError(ErrCodeInvalid, "unknown ownership policy: "+value)
	}
}

// Scope builds the lookup for id on behalf of owner under the policy.
func (p OwnershipPolicy) Scope(owner Identity, id string) TodoScope {
	if p == OwnershipLegacy {
		return TodoScope{ID: id}
	}

	return TodoScope{ID: id, OwnerID: owner.Subject}
}
