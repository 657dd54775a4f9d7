package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("should include the wrapped cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := StorageError("failed to insert todo", cause)

		assert.Equal(t, "failed to insert todo: connection reset", err.Error())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, IsDomainError(err, ErrCodeStorage))
	})

	t.Run("should be found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("update: %w", ErrTodoNotFound)

		code, ok := CodeOf(err)

		assert.True(t, ok)
		assert.Equal(t, ErrCodeNotFound, code)
		assert.True(t, errors.Is(err, ErrTodoNotFound))
	})

	t.Run("should not classify foreign errors", func(t *testing.T) {
		err := errors.New("boom")

		_, ok := CodeOf(err)

		assert.False(t, ok)
		assert.False(t, IsDomainError(err, ErrCodeStorage))
	})

	t.Run("nil error is empty", func(t *testing.T) {
		var err *Error

		assert.Equal(t, "", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
