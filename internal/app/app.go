package app

import (
	"context"
	"fmt"
	"taskDesk/internal/config"
	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	"taskDesk/internal/repository"
	"taskDesk/internal/repository/kv/file"
	"taskDesk/internal/repository/kv/inmemory"
	"taskDesk/internal/repository/kv/postgres"
	kvredis "taskDesk/internal/repository/kv/redis"
	"taskDesk/internal/repository/kv/sqlite"
	"taskDesk/internal/service"
	"taskDesk/internal/session"
	"taskDesk/internal/storage"
	"taskDesk/internal/worker"

	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	kv        repository.KV // интерфейс!
	Session   *session.Gate
	Store     *service.TaskStore
	shutdowns []func() // функции для завершения работы
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// NewWithKV собирает приложение поверх готового хранилища
func NewWithKV(cfg *config.Config, kv repository.KV) *App {
	a := New(cfg)
	a.kv = kv
	return a
}

func (a *App) Init(ctx context.Context, opts ...service.StoreOption) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Sync()
	})

	if a.kv == nil {
		kv, err := OpenKV(ctx, a.config.Storage)
		if err != nil {
			// без долговременного хранилища продолжаем в памяти
			logger.Warn("App: Хранилище недоступно, данные не сохранятся после выхода",
				zap.String("type", string(a.config.Storage.Type)), zap.Error(err))
			kv = inmemory.NewStorage()
		}
		a.kv = kv
		a.shutdowns = append(a.shutdowns, func() {
			if err := kv.Close(); err != nil {
				logger.Warn("App: Ошибка закрытия хранилища", zap.Error(err))
			}
		})
	}

	idGen, err := service.NewIDGenerator(a.config.Tasks.IDFormat)
	if err != nil {
		return nil, err
	}

	adapter := storage.New(a.kv)
	a.Session = session.NewGate(adapter, a.config.Session.Key)

	storeOpts := []service.StoreOption{
		service.WithKey(a.config.Tasks.Key),
		service.WithIDGenerator(idGen),
	}
	a.Store = service.NewTaskStore(ctx, adapter, append(storeOpts, opts...)...)

	return a, nil
}

// OverdueWorker создаёт воркер просрочки с параметрами из конфигурации
func (a *App) OverdueWorker(onOverdue func([]task.Task)) *worker.OverdueWorker {
	interval := a.config.Worker.Interval
	batch := a.config.Worker.BatchSize
	return worker.NewOverdueWorker(a.Store, &interval, &batch, onOverdue)
}

func (a *App) HealthCheck(ctx context.Context) error {
	if a.kv == nil {
		return repository.ErrUnavailable
	}
	return a.kv.HealthCheck(ctx)
}

// Close выполняет функции завершения в обратном порядке
func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

// OpenKV открывает хранилище нужного типа
func OpenKV(ctx context.Context, cfg config.StorageConfig) (repository.KV, error) {
	var (
		kv  repository.KV
		err error
	)
	switch cfg.Type {
	case repository.TypeInMemory:
		return inmemory.NewStorage(), nil
	case repository.TypeFile:
		var s *file.Storage
		s, err = file.NewOS(cfg.Path)
		kv = s
	case repository.TypeSQLite:
		var s *sqlite.Storage
		s, err = sqlite.New(cfg.Path)
		kv = s
	case repository.TypePostgres:
		var s *postgres.Storage
		s, err = postgres.New(ctx, cfg.DSN, postgres.PoolConfig{
			MaxConns:        int32(cfg.Pool.MaxConnections),
			MinConns:        int32(cfg.Pool.MinConnections),
			MaxConnIdleTime: cfg.Pool.IdleTimeout,
		})
		kv = s
	case repository.TypeRedis:
		var s *kvredis.Storage
		s, err = kvredis.New(ctx, cfg.Redis.Addr, cfg.Redis.Prefix, cfg.Redis.DB)
		kv = s
	default:
		return nil, fmt.Errorf("тип %q: %w", cfg.Type, repository.ErrUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("открытие хранилища %s: %w", cfg.Type, err)
	}
	return kv, nil
}
