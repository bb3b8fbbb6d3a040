package redis

import (
	"context"
	"errors"
	"fmt"
	"taskDesk/internal/logger"
	repo "taskDesk/internal/repository"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Storage struct {
	client *goredis.Client
	prefix string
}

// New подключается к Redis, ключи слотов хранятся с префиксом
func New(ctx context.Context, addr, prefix string, db int) (*Storage, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("Repository: Redis недоступен", err, zap.String("addr", addr))
		return nil, fmt.Errorf("подключение к redis %s: %w", addr, err)
	}

	logger.Info("Repository: Успешное подключение к Redis", zap.String("addr", addr))
	return NewWithClient(client, prefix), nil
}

func NewWithClient(client *goredis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("чтение слота %s: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("запись слота %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("удаление слота %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения Redis")
	return s.client.Close()
}
