package service_test

import (
	"errors"
	"fmt"
	"taskDesk/internal/service"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDGenerator тестирует выбор генератора
func TestNewIDGenerator(t *testing.T) {
	t.Run("uuid by default", func(t *testing.T) {
		gen, err := service.NewIDGenerator("")
		require.NoError(t, err)

		_, err = uuid.Parse(gen())
		assert.NoError(t, err)
	})

	t.Run("nanoid", func(t *testing.T) {
		gen, err := service.NewIDGenerator(service.IDFormatNanoID)
		require.NoError(t, err)

		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := gen()
			assert.Len(t, id, service.DefaultNanoIDLength)
			assert.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := service.NewIDGenerator("snowflake")
		require.Error(t, err)
		assert.True(t, service.IsCode(err, service.CodeValidation))
	})
}

// TestBusinessError тестирует форматирование бизнес-ошибок
func TestBusinessError(t *testing.T) {
	err := service.NewNotFound("Задача", "abc")
	assert.Equal(t, "[NOT_FOUND] Задача abc не найден(а)", err.Error())
	assert.Equal(t, "abc", err.Details["id"])

	cause := errors.New("boom")
	wrapped := &service.BusinessError{Code: "X", Message: "m", Err: cause}
	assert.Equal(t, "[X] m: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.False(t, service.IsCode(fmt.Errorf("plain"), service.CodeNotFound))
	assert.True(t, service.IsCode(service.NewUnauthenticated(), service.CodeUnauthenticated))
}
