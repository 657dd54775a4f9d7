package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
)

func TestValidate(t *testing.T) {
	t.Run("should accept a titled todo", func(t *testing.T) {
		err := Validate(request.CreateTodoRequest{Title: "Buy milk"})

		assert.NoError(t, err)
	})

	t.Run("should reject a missing title with a translated message", func(t *testing.T) {
		err := Validate(request.CreateTodoRequest{Description: "2 liters"})

		assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))

		var dErr *domain.Error
		assert.ErrorAs(t, err, &dErr)
		assert.Equal(t, "title is required", dErr.Message)
	})

	t.Run("should accept an update without a title", func(t *testing.T) {
		err := Validate(request.UpdateTodoRequest{})

		assert.NoError(t, err)
	})
}
