// Package view вычисляет то, что показывается пользователю: отфильтрованный
// список, счётчики и признак просрочки. Все функции чистые и не меняют порядок задач.
package view

import (
	"fmt"
	"strings"
	"taskDesk/internal/models/task"
	"time"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

var Filters = []Filter{FilterAll, FilterPending, FilterCompleted}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("неизвестный фильтр %q: ожидается all, pending или completed", s)
	}
}

// Label - подпись фильтра в интерфейсе
func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "In Progress"
	case FilterCompleted:
		return "Completed"
	default:
		return "All Tasks"
	}
}

func (f Filter) match(t task.Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply сначала фильтрует по состоянию, затем по строке поиска
// (подстрока без учёта регистра в заголовке или описании)
func Apply(tasks []task.Task, filter Filter, search string) []task.Task {
	needle := strings.ToLower(search)
	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.match(t) {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		res = append(res, t)
	}
	return res
}

func matchesSearch(t task.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

type Counts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// Of возвращает счётчик для фильтра
func (c Counts) Of(f Filter) int {
	switch f {
	case FilterPending:
		return c.Pending
	case FilterCompleted:
		return c.Completed
	default:
		return c.All
	}
}

// CountsOf считает по полному списку, без учёта фильтра и поиска
func CountsOf(tasks []task.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// IsOverdue - срок задан, строго раньше now, задача не выполнена
func IsOverdue(t task.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

func Overdue(tasks []task.Task, now time.Time) []task.Task {
	var res []task.Task
	for _, t := range tasks {
		if IsOverdue(t, now) {
			res = append(res, t)
		}
	}
	return res
}
