package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskDesk/internal/models/task"
	"taskDesk/internal/repository"
	"taskDesk/internal/repository/kv/inmemory"
	"taskDesk/internal/service"
	"taskDesk/internal/storage"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// sequentialIDs выдаёт id-1, id-2, ...
func sequentialIDs() service.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T, opts ...service.StoreOption) (*service.TaskStore, *inmemory.Storage) {
	t.Helper()
	kv := inmemory.NewStorage()
	opts = append([]service.StoreOption{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(sequentialIDs()),
	}, opts...)
	return service.NewTaskStore(context.Background(), storage.New(kv), opts...), kv
}

func persisted(t *testing.T, kv repository.KV) []task.Task {
	t.Helper()
	res := storage.Read(context.Background(), storage.New(kv), service.DefaultTasksKey, []task.Task{})
	require.NotEqual(t, storage.SourceRaw, res.Source)
	return res.Value
}

func ids(tasks []task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

// TestTaskStore_Add тестирует создание задач
func TestTaskStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("new task goes first", func(t *testing.T) {
		store, kv := newStore(t)
		_, ok := store.Add(ctx, task.Draft{Title: "A"})
		require.True(t, ok)

		tasks, ok := store.Add(ctx, task.Draft{Title: "B"})
		require.True(t, ok)

		require.Len(t, tasks, 2)
		assert.Equal(t, "B", tasks[0].Title)
		assert.Equal(t, "A", tasks[1].Title)
		assert.Equal(t, []string{"id-2", "id-1"}, ids(persisted(t, kv)))
	})

	t.Run("defaults are applied", func(t *testing.T) {
		store, _ := newStore(t)
		tasks, ok := store.Add(ctx, task.Draft{Title: "  Write report  ", Description: "  q3  ", Priority: "bogus"})
		require.True(t, ok)

		created := tasks[0]
		assert.Equal(t, "id-1", created.ID)
		assert.Equal(t, "Write report", created.Title)
		assert.Equal(t, "q3", created.Description)
		assert.Equal(t, task.PriorityMedium, created.Priority)
		assert.False(t, created.Completed)
		assert.Equal(t, fixedNow, created.CreatedAt)
		assert.Nil(t, created.DueDate)
	})

	t.Run("due date is kept", func(t *testing.T) {
		store, _ := newStore(t)
		due := fixedNow.Add(48 * time.Hour)
		tasks, ok := store.Add(ctx, task.Draft{Title: "x", DueDate: &due, Priority: task.PriorityHigh})
		require.True(t, ok)

		require.NotNil(t, tasks[0].DueDate)
		assert.True(t, due.Equal(*tasks[0].DueDate))
		assert.Equal(t, task.PriorityHigh, tasks[0].Priority)
	})

	for _, title := range []string{"", " ", "\t\n  "} {
		t.Run(fmt.Sprintf("blank title %q is rejected", title), func(t *testing.T) {
			store, kv := newStore(t)
			store.Add(ctx, task.Draft{Title: "keep"})

			tasks, ok := store.Add(ctx, task.Draft{Title: title, Description: "ignored"})

			assert.False(t, ok)
			assert.Len(t, tasks, 1)
			assert.Equal(t, 1, store.Len())
			assert.Len(t, persisted(t, kv), 1)
		})
	}

	t.Run("size grows by exactly one", func(t *testing.T) {
		store, _ := newStore(t)
		for i := 1; i <= 25; i++ {
			tasks, ok := store.Add(ctx, task.Draft{Title: fmt.Sprintf("task %d", i)})
			require.True(t, ok)
			assert.Len(t, tasks, i)
			assert.Equal(t, fmt.Sprintf("task %d", i), tasks[0].Title)
		}
	})

	t.Run("colliding ids are regenerated", func(t *testing.T) {
		seq := []string{"dup", "dup", "", "other"}
		n := 0
		gen := func() string {
			id := seq[n]
			n++
			return id
		}
		store, _ := newStore(t, service.WithIDGenerator(gen))

		store.Add(ctx, task.Draft{Title: "first"})
		tasks, _ := store.Add(ctx, task.Draft{Title: "second"})

		assert.Equal(t, []string{"other", "dup"}, ids(tasks))
	})

	t.Run("exhausted generator falls back to uuid", func(t *testing.T) {
		store, _ := newStore(t, service.WithIDGenerator(func() string { return "" }))

		tasks, ok := store.Add(ctx, task.Draft{Title: "first"})
		require.True(t, ok)
		_, err := uuid.Parse(tasks[0].ID)
		assert.NoError(t, err)
	})

	t.Run("constant generator still yields unique ids", func(t *testing.T) {
		store, _ := newStore(t, service.WithIDGenerator(func() string { return "same" }))

		store.Add(ctx, task.Draft{Title: "first"})
		tasks, ok := store.Add(ctx, task.Draft{Title: "second"})
		require.True(t, ok)
		require.Len(t, tasks, 2)
		assert.Equal(t, "same", tasks[1].ID)
		assert.NotEqual(t, "same", tasks[0].ID)
		assert.Len(t, tasks[0].ID, 36)
	})
}

// TestTaskStore_Scenario тестирует сценарий из двух задач
func TestTaskStore_Scenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	store.Add(ctx, task.Draft{Title: "A"})
	tasks, ok := store.Add(ctx, task.Draft{Title: "B"})
	require.True(t, ok)

	assert.Equal(t, "B", tasks[0].Title)
	assert.Equal(t, "A", tasks[1].Title)
	for _, tk := range tasks {
		assert.False(t, tk.Completed)
	}
}

// TestTaskStore_Edit тестирует редактирование
func TestTaskStore_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("patch merges fields", func(t *testing.T) {
		store, kv := newStore(t)
		store.Add(ctx, task.Draft{Title: "Old", Description: "old desc"})

		title := "New"
		prio := task.PriorityLow
		tasks, ok := store.Edit(ctx, "id-1", task.Patch{Title: &title, Priority: &prio})
		require.True(t, ok)

		assert.Equal(t, "New", tasks[0].Title)
		assert.Equal(t, "old desc", tasks[0].Description)
		assert.Equal(t, task.PriorityLow, tasks[0].Priority)
		assert.Equal(t, "New", persisted(t, kv)[0].Title)
	})

	t.Run("id and createdAt never change", func(t *testing.T) {
		store, _ := newStore(t)
		store.Add(ctx, task.Draft{Title: "T"})
		before, _ := store.Get("id-1")

		title := "  changed  "
		desc := "d"
		due := fixedNow.Add(time.Hour)
		prio := task.Priority("HIGH")
		done := true
		patches := []task.Patch{
			{},
			{Title: &title},
			{Description: &desc, DueDate: &due},
			{ClearDueDate: true, Priority: &prio, Completed: &done},
		}
		for _, p := range patches {
			_, ok := store.Edit(ctx, "id-1", p)
			require.True(t, ok)

			after, found := store.Get("id-1")
			require.True(t, found)
			assert.Equal(t, before.ID, after.ID)
			assert.Equal(t, before.CreatedAt, after.CreatedAt)
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		store, kv := newStore(t)
		store.Add(ctx, task.Draft{Title: "T"})

		title := "X"
		tasks, ok := store.Edit(ctx, "missing", task.Patch{Title: &title})

		assert.False(t, ok)
		assert.Equal(t, "T", tasks[0].Title)
		assert.Equal(t, "T", persisted(t, kv)[0].Title)
	})
}

// TestTaskStore_ToggleCompletion тестирует переключение выполнения
func TestTaskStore_ToggleCompletion(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore(t)
	store.Add(ctx, task.Draft{Title: "A"})
	store.Add(ctx, task.Draft{Title: "B"})

	tasks, ok := store.ToggleCompletion(ctx, "id-1")
	require.True(t, ok)
	assert.True(t, tasks[1].Completed)
	assert.False(t, tasks[0].Completed)
	assert.True(t, persisted(t, kv)[1].Completed)

	tasks, ok = store.ToggleCompletion(ctx, "id-1")
	require.True(t, ok)
	assert.False(t, tasks[1].Completed)

	_, ok = store.ToggleCompletion(ctx, "nope")
	assert.False(t, ok)
}

// TestTaskStore_Delete тестирует удаление
func TestTaskStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore(t)
	store.Add(ctx, task.Draft{Title: "A"})
	store.Add(ctx, task.Draft{Title: "B"})
	store.Add(ctx, task.Draft{Title: "C"})

	tasks, ok := store.Delete(ctx, "id-2")
	require.True(t, ok)
	assert.Equal(t, []string{"id-3", "id-1"}, ids(tasks))
	assert.Equal(t, []string{"id-3", "id-1"}, ids(persisted(t, kv)))

	tasks, ok = store.Delete(ctx, "id-2")
	assert.False(t, ok)
	assert.Len(t, tasks, 2)

	_, found := store.Get("id-2")
	assert.False(t, found)
}

// TestTaskStore_ClearCompleted тестирует удаление выполненных
func TestTaskStore_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore(t)
	for _, title := range []string{"A", "B", "C"} {
		store.Add(ctx, task.Draft{Title: title})
	}
	store.ToggleCompletion(ctx, "id-1")
	store.ToggleCompletion(ctx, "id-3")

	tasks, removed := store.ClearCompleted(ctx)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"id-2"}, ids(tasks))
	assert.Equal(t, []string{"id-2"}, ids(persisted(t, kv)))

	_, removed = store.ClearCompleted(ctx)
	assert.Equal(t, 0, removed)
}

// TestTaskStore_ReturnedSliceIsCopy тестирует, что внешний код не меняет хранилище
func TestTaskStore_ReturnedSliceIsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	due := fixedNow
	tasks, _ := store.Add(ctx, task.Draft{Title: "A", DueDate: &due})

	tasks[0].Title = "hacked"
	*tasks[0].DueDate = fixedNow.Add(time.Hour)
	snapshot := store.Tasks()
	snapshot[0].Completed = true

	got, _ := store.Get("id-1")
	assert.Equal(t, "A", got.Title)
	assert.False(t, got.Completed)
	assert.True(t, got.DueDate.Equal(fixedNow))
}

// TestTaskStore_Load тестирует загрузку из хранилища
func TestTaskStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("persisted tasks are restored in order", func(t *testing.T) {
		kv := inmemory.NewStorage()
		adapter := storage.New(kv)
		first := service.NewTaskStore(ctx, adapter, service.WithIDGenerator(sequentialIDs()))
		first.Add(ctx, task.Draft{Title: "A"})
		first.Add(ctx, task.Draft{Title: "B"})

		second := service.NewTaskStore(ctx, adapter)
		assert.Equal(t, []string{"id-2", "id-1"}, ids(second.Tasks()))
	})

	t.Run("malformed snapshot starts empty", func(t *testing.T) {
		kv := inmemory.NewStorage()
		require.NoError(t, kv.Set(ctx, "tasks", "definitely not json"))

		store := service.NewTaskStore(ctx, storage.New(kv))
		assert.Empty(t, store.Tasks())
	})

	t.Run("snapshot is trusted as is", func(t *testing.T) {
		kv := inmemory.NewStorage()
		require.NoError(t, kv.Set(ctx, "tasks", `[{"id":"x","title":"","priority":"urgent"}]`))

		store := service.NewTaskStore(ctx, storage.New(kv))
		tasks := store.Tasks()
		require.Len(t, tasks, 1)
		assert.Equal(t, task.Priority("urgent"), tasks[0].Priority)
	})

	t.Run("custom key", func(t *testing.T) {
		kv := inmemory.NewStorage()
		store := service.NewTaskStore(ctx, storage.New(kv), service.WithKey("alice:tasks"))
		store.Add(ctx, task.Draft{Title: "A"})

		_, err := kv.Get(ctx, "alice:tasks")
		assert.NoError(t, err)
		_, err = kv.Get(ctx, "tasks")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// TestTaskStore_NoBackend тестирует работу только в памяти
func TestTaskStore_NoBackend(t *testing.T) {
	ctx := context.Background()
	store := service.NewTaskStore(ctx, storage.New(nil), service.WithIDGenerator(sequentialIDs()))

	store.Add(ctx, task.Draft{Title: "A"})
	tasks, ok := store.ToggleCompletion(ctx, "id-1")

	assert.True(t, ok)
	assert.True(t, tasks[0].Completed)
}

// FailingKV - хранилище, которое всегда отказывает в записи
type FailingKV struct {
	mock.Mock
}

func (m *FailingKV) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *FailingKV) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *FailingKV) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *FailingKV) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *FailingKV) Close() error {
	return m.Called().Error(0)
}

// TestTaskStore_WriteFailure тестирует, что сбой записи не ломает сессию
func TestTaskStore_WriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := new(FailingKV)
	kv.On("Get", mock.Anything, "tasks").Return("", repository.ErrNotFound)
	kv.On("Set", mock.Anything, "tasks", mock.Anything).Return(errors.New("quota exceeded"))

	store := service.NewTaskStore(ctx, storage.New(kv), service.WithIDGenerator(sequentialIDs()))

	var tasks []task.Task
	var ok bool
	assert.NotPanics(t, func() {
		tasks, ok = store.Add(ctx, task.Draft{Title: "A"})
	})
	assert.True(t, ok)
	assert.Len(t, tasks, 1)
	assert.Equal(t, 1, store.Len())
	kv.AssertNumberOfCalls(t, "Set", 1)
}

// TestTaskStore_Notifier тестирует уведомления об изменениях
func TestTaskStore_Notifier(t *testing.T) {
	ctx := context.Background()
	var events []service.Event
	store, _ := newStore(t, service.WithNotifier(func(e service.Event) {
		events = append(events, e)
	}))

	store.Add(ctx, task.Draft{Title: "A"})
	title := "A2"
	store.Edit(ctx, "id-1", task.Patch{Title: &title})
	store.ToggleCompletion(ctx, "id-1")
	store.ClearCompleted(ctx)
	store.Add(ctx, task.Draft{Title: "B"})
	store.Delete(ctx, "id-2")
	store.Delete(ctx, "missing")
	store.Add(ctx, task.Draft{Title: " "})

	types := make([]service.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	assert.Equal(t, []service.EventType{
		service.EventAdded,
		service.EventEdited,
		service.EventToggled,
		service.EventCleared,
		service.EventAdded,
		service.EventDeleted,
	}, types)
	assert.Equal(t, "A2", events[1].Task.Title)
	assert.Equal(t, 1, events[3].Count)
}

// TestTaskStore_Resolve тестирует поиск по префиксу
func TestTaskStore_Resolve(t *testing.T) {
	ctx := context.Background()
	gen := func() func() string {
		seq := []string{"abc123", "abd456", "xyz789"}
		n := 0
		return func() string {
			id := seq[n]
			n++
			return id
		}
	}()
	store, _ := newStore(t, service.WithIDGenerator(gen))
	for _, title := range []string{"A", "B", "C"} {
		store.Add(ctx, task.Draft{Title: title})
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		errCode string
	}{
		{name: "full id", ref: "abc123", wantID: "abc123"},
		{name: "unique prefix", ref: "xy", wantID: "xyz789"},
		{name: "trimmed", ref: "  abd ", wantID: "abd456"},
		{name: "ambiguous", ref: "ab", errCode: service.CodeAmbiguousID},
		{name: "missing", ref: "q", errCode: service.CodeNotFound},
		{name: "empty", ref: " ", errCode: service.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Resolve(tt.ref)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.True(t, service.IsCode(err, tt.errCode), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

// TestTaskStore_Concurrent тестирует общий доступ из нескольких горутин
func TestTaskStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := service.NewTaskStore(ctx, storage.New(inmemory.NewStorage()))

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 10; j++ {
				store.Add(ctx, task.Draft{Title: fmt.Sprintf("%d-%d", n, j)})
				_ = store.Tasks()
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	tasks := store.Tasks()
	assert.Len(t, tasks, 100)
	seen := map[string]bool{}
	for _, tk := range tasks {
		assert.False(t, seen[tk.ID], "duplicate id %s", tk.ID)
		seen[tk.ID] = true
		assert.False(t, strings.TrimSpace(tk.Title) == "")
	}
}
