package service

import (
	"context"
	"strings"
	"sync"
	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	"taskDesk/internal/storage"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTasksKey = "tasks"

const maxIDAttempts = 16

// TaskStore владеет упорядоченным списком задач (новые впереди) и после каждого
// изменения целиком переписывает его снимок в хранилище.
// Операции синхронны и никогда не возвращают ошибок: неизвестный id
// и пустой заголовок - это просто отсутствие изменений.
type TaskStore struct {
	mtx    sync.Mutex
	slot   *storage.Slot[[]task.Task]
	now    func() time.Time
	newID  IDGenerator
	notify func(Event)
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	key    string
	now    func() time.Time
	newID  IDGenerator
	notify func(Event)
}

func WithKey(key string) StoreOption {
	return func(o *storeOptions) {
		if key != "" {
			o.key = key
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(gen IDGenerator) StoreOption {
	return func(o *storeOptions) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithNotifier подписывает на изменения. Уведомление приходит под блокировкой
// хранилища, поэтому обработчик не должен вызывать методы TaskStore.
func WithNotifier(notify func(Event)) StoreOption {
	return func(o *storeOptions) {
		o.notify = notify
	}
}

// NewTaskStore загружает задачи из слота хранилища. Содержимое слота не проверяется.
func NewTaskStore(ctx context.Context, adapter *storage.Adapter, opts ...StoreOption) *TaskStore {
	o := storeOptions{
		key:   DefaultTasksKey,
		now:   time.Now,
		newID: UUIDGenerator(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	slot := storage.Open(ctx, adapter, o.key, []task.Task{})
	switch slot.LoadedFrom() {
	case storage.SourceRaw:
		logger.Warn("Service: Снимок задач не разобран, начинаем с пустого списка", zap.String("key", o.key))
	case storage.SourceParsed:
		logger.Info("Service: Задачи загружены", zap.Int("count", len(slot.Get())))
	}

	return &TaskStore{
		slot:   slot,
		now:    o.now,
		newID:  o.newID,
		notify: o.notify,
	}
}

// Tasks возвращает копию текущего списка
func (s *TaskStore) Tasks() []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return cloneAll(s.slot.Get())
}

func (s *TaskStore) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.slot.Get())
}

func (s *TaskStore) Get(id string) (task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks := s.slot.Get()
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Add создаёт задачу из черновика и ставит её в начало списка.
// Черновик с пустым после обрезки заголовком отклоняется.
func (s *TaskStore) Add(ctx context.Context, draft task.Draft) ([]task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		logger.Info("Service: Пустой заголовок, задача не создана")
		return cloneAll(s.slot.Get()), false
	}

	current := s.slot.Get()
	created := task.Task{
		ID:          s.uniqueID(current),
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Priority:    task.NormalizePriority(draft.Priority),
		Completed:   false,
		CreatedAt:   s.now(),
	}
	if draft.DueDate != nil && !draft.DueDate.IsZero() {
		due := *draft.DueDate
		created.DueDate = &due
	}

	next := make([]task.Task, 0, len(current)+1)
	next = append(next, created)
	next = append(next, current...)
	s.slot.Set(ctx, next)

	logger.Info("Service: Задача создана", zap.String("task_id", created.ID))
	s.emit(Event{Type: EventAdded, Task: created.Clone()})
	return cloneAll(next), true
}

// Edit применяет патч к задаче с данным id. ID и CreatedAt не меняются.
func (s *TaskStore) Edit(ctx context.Context, id string, patch task.Patch) ([]task.Task, bool) {
	return s.mutate(ctx, id, EventEdited, func(t *task.Task) {
		patch.Apply(t)
	})
}

// ToggleCompletion переключает признак выполнения
func (s *TaskStore) ToggleCompletion(ctx context.Context, id string) ([]task.Task, bool) {
	return s.mutate(ctx, id, EventToggled, func(t *task.Task) {
		t.Completed = !t.Completed
	})
}

// Delete удаляет задачу навсегда
func (s *TaskStore) Delete(ctx context.Context, id string) ([]task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current := s.slot.Get()
	i := indexOf(current, id)
	if i < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return cloneAll(current), false
	}
	removed := current[i]

	next := make([]task.Task, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)
	s.slot.Set(ctx, next)

	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	s.emit(Event{Type: EventDeleted, Task: removed.Clone()})
	return cloneAll(next), true
}

// ClearCompleted удаляет все выполненные задачи одной записью
func (s *TaskStore) ClearCompleted(ctx context.Context) ([]task.Task, int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current := s.slot.Get()
	next := make([]task.Task, 0, len(current))
	for _, t := range current {
		if !t.Completed {
			next = append(next, t)
		}
	}

	removed := len(current) - len(next)
	if removed == 0 {
		return cloneAll(current), 0
	}
	s.slot.Set(ctx, next)

	logger.Info("Service: Выполненные задачи удалены", zap.Int("count", removed))
	s.emit(Event{Type: EventCleared, Count: removed})
	return cloneAll(next), removed
}

// Resolve ищет задачу по полному id или по однозначному префиксу
func (s *TaskStore) Resolve(ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, NewValidationError("id", "пустой идентификатор")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks := s.slot.Get()
	if i := indexOf(tasks, ref); i >= 0 {
		return tasks[i].Clone(), nil
	}

	var matches []task.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, NewNotFound("Задача", ref)
	case 1:
		return matches[0].Clone(), nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return task.Task{}, NewBusinessError(CodeAmbiguousID,
			"Префикс "+ref+" подходит нескольким задачам",
			ToDetail("candidates", ids))
	}
}

func (s *TaskStore) mutate(ctx context.Context, id string, evt EventType, fn func(*task.Task)) ([]task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current := s.slot.Get()
	i := indexOf(current, id)
	if i < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return cloneAll(current), false
	}

	next := cloneAll(current)
	keepID, createdAt := next[i].ID, next[i].CreatedAt
	fn(&next[i])
	next[i].ID, next[i].CreatedAt = keepID, createdAt
	s.slot.Set(ctx, next)

	logger.Info("Service: Задача обновлена", zap.String("task_id", id), zap.String("event", string(evt)))
	s.emit(Event{Type: evt, Task: next[i].Clone()})
	return cloneAll(next), true
}

// uniqueID берёт id у генератора, а после maxIDAttempts неудач - UUID
func (s *TaskStore) uniqueID(tasks []task.Task) string {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && indexOf(tasks, id) < 0 {
			return id
		}
	}

	logger.Warn("Service: Генератор не выдал свободный id, используется UUID",
		zap.Int("attempts", maxIDAttempts))
	for {
		id := uuid.NewString()
		if indexOf(tasks, id) < 0 {
			return id
		}
	}
}

func (s *TaskStore) emit(e Event) {
	if s.notify != nil {
		s.notify(e)
	}
}

func indexOf(tasks []task.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []task.Task) []task.Task {
	res := make([]task.Task, len(tasks))
	for i := range tasks {
		res[i] = tasks[i].Clone()
	}
	return res
}
