package view

import (
	"taskDesk/internal/models/task"
	"time"
)

// Row - задача в том виде, в каком её отдаёт представление
type Row struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsOverdue   bool       `json:"isOverdue"`
}

func FromTask(t task.Task, now time.Time) Row {
	return Row{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(task.NormalizePriority(t.Priority)),
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		IsOverdue:   IsOverdue(t, now),
	}
}

func FromTaskList(tasks []task.Task, now time.Time) []Row {
	result := make([]Row, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

// Dashboard - всё, что нужно для отрисовки списка
type Dashboard struct {
	Filter Filter `json:"filter"`
	Search string `json:"search,omitempty"`
	Counts Counts `json:"counts"`
	Tasks  []Row  `json:"tasks"`
}

func Build(tasks []task.Task, filter Filter, search string, now time.Time) Dashboard {
	return Dashboard{
		Filter: filter,
		Search: search,
		Counts: CountsOf(tasks),
		Tasks:  FromTaskList(Apply(tasks, filter, search), now),
	}
}
