package task

import (
	"strings"
	"time"
)

// функция обновления одного поля задачи
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	description = strings.TrimSpace(description)
	return func(task *Task) {
		task.Description = description
	}
}

func WithPriority(priority Priority) TaskOption {
	priority = NormalizePriority(priority)
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDueDate(dueDate time.Time) TaskOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		due := dueDate
		task.DueDate = &due
	}
}

func WithoutDueDate() TaskOption {
	return func(task *Task) {
		task.DueDate = nil
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}

// Patch - частичное обновление задачи. Поля ID и CreatedAt отсутствуют намеренно:
// патч не может их изменить.
type Patch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
	Completed    *bool
}

// Options переводит патч в список функций обновления, nil-опции отбрасываются
func (p Patch) Options() []TaskOption {
	var opts []TaskOption
	if p.Title != nil {
		opts = append(opts, WithTitle(*p.Title))
	}
	if p.Description != nil {
		opts = append(opts, WithDescription(*p.Description))
	}
	if p.ClearDueDate {
		opts = append(opts, WithoutDueDate())
	} else if p.DueDate != nil {
		opts = append(opts, WithDueDate(*p.DueDate))
	}
	if p.Priority != nil {
		opts = append(opts, WithPriority(*p.Priority))
	}
	if p.Completed != nil {
		opts = append(opts, WithCompleted(*p.Completed))
	}

	res := opts[:0]
	for _, opt := range opts {
		if opt != nil {
			res = append(res, opt)
		}
	}
	return res
}

// IsEmpty сообщает, что патч ничего не меняет
func (p Patch) IsEmpty() bool {
	return len(p.Options()) == 0
}

// Apply применяет патч, сохраняя ID и CreatedAt
func (p Patch) Apply(t *Task) {
	id, createdAt := t.ID, t.CreatedAt
	for _, opt := range p.Options() {
		opt(t)
	}
	t.ID, t.CreatedAt = id, createdAt
}
