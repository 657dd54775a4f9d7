package context

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	t.Run("should round trip through the context", func(t *testing.T) {
		current := NewCurrent()
		current.Set(RequestIDKey, "req-1")

		ctx := WithCurrent(context.Background(), current)

		got, ok := FromContext(ctx)

		assert.True(t, ok)
		assert.Same(t, current, got)
		assert.Equal(t, "req-1", RequestID(ctx))
	})

	t.Run("should return an empty set outside a request", func(t *testing.T) {
		current := GetCurrent(context.Background())

		assert.Empty(t, current.All())
		assert.Equal(t, "", RequestID(context.Background()))
	})

	t.Run("should keep requests apart", func(t *testing.T) {
		first := WithCurrent(context.Background(), NewCurrent())
		second := WithCurrent(context.Background(), NewCurrent())

		GetCurrent(first).Set(SubjectKey, "uid-1")

		assert.True(t, GetCurrent(first).Exists(SubjectKey))
		assert.False(t, GetCurrent(second).Exists(SubjectKey))
	})

	t.Run("should reject values of another type", func(t *testing.T) {
		current := NewCurrent()
		current.Set(PathKey, 42)

		_, ok := current.GetString(PathKey)

		assert.False(t, ok)
	})

	t.Run("should be safe for concurrent use", func(t *testing.T) {
		current := NewCurrent()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				current.Set(MethodKey, "GET")
				_ = current.RequestID()
			}()
		}
		wg.Wait()

		method, ok := current.GetString(MethodKey)
		assert.True(t, ok)
		assert.Equal(t, "GET", method)
	})
}
