package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("ключ не найден")
	ErrUnavailable = errors.New("хранилище недоступно")
)

// KV - долговременное хранилище именованных текстовых слотов
type KV interface {
	// Get возвращает ErrNotFound, если ключа нет
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// Type - вид хранилища из конфигурации
type Type string

const (
	TypeInMemory Type = "inmemory"
	TypeFile     Type = "file"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
	TypeRedis    Type = "redis"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInMemory, TypeFile, TypeSQLite, TypePostgres, TypeRedis:
		return true
	}
	return false
}
