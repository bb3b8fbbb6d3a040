package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskDesk/internal/logger"
	repo "taskDesk/internal/repository"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

// PoolConfig - размеры пула, нули означают значения по умолчанию
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	s := &Storage{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return s, nil
}

// Migrate создаёт таблицу слотов, повторный вызов безопасен
func (s *Storage) Migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS kv_entries (
				slot       TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		logger.Error("Repository: Миграция не удалась", err)
		return fmt.Errorf("миграция: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()

	query := `SELECT value FROM kv_entries WHERE slot = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать слот", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return "", fmt.Errorf("чтение слота %s: %w", key, err)
	}

	s.warnIfSlow(start)
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	query := `INSERT INTO kv_entries (slot, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (slot) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		logger.Error("Repository: Не удалось записать слот", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись слота %s: %w", key, err)
	}

	s.warnIfSlow(start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	start := time.Now()

	query := `DELETE FROM kv_entries WHERE slot = $1`

	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		logger.Error("Repository: Не удалось удалить слот", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление слота %s: %w", key, err)
	}

	s.warnIfSlow(start)
	return nil
}

func (s *Storage) warnIfSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
