// Package kvtest содержит общий набор проверок для реализаций repository.KV.
package kvtest

import (
	"context"
	"fmt"
	"sync"
	"taskDesk/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run прогоняет общий контракт хранилища. Хранилище должно быть пустым.
func Run(t *testing.T, kv repository.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, kv.HealthCheck(ctx))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, "kvtest-missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "kvtest-a", `[{"id":"1"}]`))

		value, err := kv.Get(ctx, "kvtest-a")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "kvtest-b", "first"))
		require.NoError(t, kv.Set(ctx, "kvtest-b", "second"))

		value, err := kv.Get(ctx, "kvtest-b")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "kvtest-empty", ""))

		value, err := kv.Get(ctx, "kvtest-empty")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "kvtest-c", "x"))
		require.NoError(t, kv.Delete(ctx, "kvtest-c"))

		_, err := kv.Get(ctx, "kvtest-c")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		// удаление отсутствующего ключа не ошибка
		assert.NoError(t, kv.Delete(ctx, "kvtest-c"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "username", "alice"))
		require.NoError(t, kv.Set(ctx, "tasks", "[]"))

		user, err := kv.Get(ctx, "username")
		require.NoError(t, err)
		tasks, err := kv.Get(ctx, "tasks")
		require.NoError(t, err)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "[]", tasks)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				if err := kv.Set(ctx, fmt.Sprintf("kvtest-conc-%d", n), fmt.Sprint(n)); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		for i := 0; i < 20; i++ {
			value, err := kv.Get(ctx, fmt.Sprintf("kvtest-conc-%d", i))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprint(i), value)
		}
	})
}
