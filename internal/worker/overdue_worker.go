package worker

import (
	"context"
	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	"taskDesk/internal/view"
	"time"

	"go.uber.org/zap"
)

// TaskSource - откуда воркер берёт текущий список задач
type TaskSource interface {
	Tasks() []task.Task
}

// OverdueWorker периодически пересчитывает просроченные задачи и отдаёт их обработчику.
// Просрочка вычисляется, в хранилище ничего не пишется.
type OverdueWorker struct {
	source    TaskSource
	interval  time.Duration
	batchSize int
	now       func() time.Time
	onOverdue func([]task.Task)
}

func NewOverdueWorker(source TaskSource, interval *time.Duration, batchSize *int, onOverdue func([]task.Task)) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	var batchToSet int
	if batchSize == nil || *batchSize <= 0 {
		batchToSet = 100
	} else {
		batchToSet = *batchSize
	}
	return &OverdueWorker{
		source:    source,
		interval:  intervalToSet,
		batchSize: batchToSet,
		now:       time.Now,
		onOverdue: onOverdue,
	}
}

// WithClock подменяет часы, нужно для тестов
func (w *OverdueWorker) WithClock(now func() time.Time) *OverdueWorker {
	w.now = now
	return w
}

// Start выполняет проверку сразу и затем на каждом тике, пока ctx не отменён
func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает не больше batchSize просроченных задач в порядке списка
func (w *OverdueWorker) Check(ctx context.Context) []task.Task {
	start := time.Now()

	tasks := w.source.Tasks()
	overdue := view.Overdue(tasks, w.now())
	if len(overdue) > w.batchSize {
		overdue = overdue[:w.batchSize]
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", len(overdue)),
	)

	if w.onOverdue != nil && ctx.Err() == nil {
		w.onOverdue(overdue)
	}
	return overdue
}
