package service

import "taskDesk/internal/models/task"

type EventType string

const (
	EventAdded   EventType = "added"
	EventEdited  EventType = "edited"
	EventToggled EventType = "toggled"
	EventDeleted EventType = "deleted"
	EventCleared EventType = "cleared"
)

// Event - уведомление об изменении списка. Для EventCleared заполнен только Count.
type Event struct {
	Type  EventType
	Task  task.Task
	Count int
}
