package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTodo(t *testing.T) {
	owner := Identity{Subject: "uid-1"}
	now := time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.FixedZone("BRT", -3*60*60))

	t.Run("should bind owner from identity and default completed to false", func(t *testing.T) {
		todo, err := NewTodo(owner, TodoInput{Title: "Buy milk", Description: "2L"}, now)

		require.NoError(t, err)
		assert.Equal(t, "Buy milk", todo.Title)
		assert.Equal(t, "2L", todo.Description)
		assert.Equal(t, "uid-1", todo.OwnerID)
		assert.False(t, todo.Completed)
		assert.Empty(t, todo.ID)
	})

	t.Run("should store creation time in UTC with millisecond precision", func(t *testing.T) {
		todo, err := NewTodo(owner, TodoInput{Title: "Buy milk"}, now)

		require.NoError(t, err)
		assert.Equal(t, time.UTC, todo.CreatedAt.Location())
		assert.True(t, todo.CreatedAt.Equal(now.Truncate(time.Millisecond)))
	})

	t.Run("should reject an empty title", func(t *testing.T) {
		_, err := NewTodo(owner, TodoInput{Description: "no title"}, now)

		assert.True(t, errors.Is(err, ErrTitleRequired))
		assert.True(t, IsDomainError(err, ErrCodeValidation))
	})

	t.Run("should reject an anonymous owner", func(t *testing.T) {
		_, err := NewTodo(Identity{}, TodoInput{Title: "Buy milk"}, now)

		assert.True(t, IsDomainError(err, ErrCodeUnauthenticated))
	})
}

func TestTodo_Apply(t *testing.T) {
	createdAt := time.Now().UTC()
	todo := Todo{
		ID:          "abc",
		Title:       "Buy milk",
		Description: "2L",
		OwnerID:     "uid-1",
		Completed:   true,
		CreatedAt:   createdAt,
	}

	todo.Apply(TodoInput{Title: "Buy oat milk"})

	assert.Equal(t, "Buy oat milk", todo.Title)
	assert.Empty(t, todo.Description)
	assert.Equal(t, "abc", todo.ID)
	assert.Equal(t, "uid-1", todo.OwnerID)
	assert.True(t, todo.Completed)
	assert.Equal(t, createdAt, todo.CreatedAt)
}

func TestTodo_BelongsTo(t *testing.T) {
	todo := Todo{OwnerID: "uid-1"}

	assert.True(t, todo.BelongsTo("uid-1"))
	assert.False(t, todo.BelongsTo("uid-2"))
}

func TestOwnershipPolicy(t *testing.T) {
	owner := Identity{Subject: "uid-1"}

	t.Run("should default to strict", func(t *testing.T) {
		policy, err := ParseOwnershipPolicy("")

		require.NoError(t, err)
		assert.Equal(t, OwnershipStrict, policy)
	})

	t.Run("should parse legacy case-insensitively", func(t *testing.T) {
		policy, err := ParseOwnershipPolicy(" Legacy ")

		require.NoError(t, err)
		assert.Equal(t, OwnershipLegacy, policy)
	})

	t.Run("should reject unknown values", func(t *testing.T) {
		_, err := ParseOwnershipPolicy("open")

		assert.True(t, IsDomainError(err, ErrCodeInvalid))
	})

	t.Run("strict scope carries the owner", func(t *testing.T) {
		scope := OwnershipStrict.Scope(owner, "abc")

		assert.Equal(t, TodoScope{ID: "abc", OwnerID: "uid-1"}, scope)
		assert.True(t, scope.IsOwned())
	})

	t.Run("legacy scope is id only", func(t *testing.T) {
		scope := OwnershipLegacy.Scope(owner, "abc")

		assert.Equal(t, TodoScope{ID: "abc"}, scope)
		assert.False(t, scope.IsOwned())
	})
}
