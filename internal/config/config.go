// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"taskDesk/internal/repository"
	"taskDesk/internal/service"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Worker  WorkerConfig  `yaml:"worker"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type StorageConfig struct {
	Type  repository.Type `yaml:"type"` // inmemory, file, sqlite, postgres или redis
	Path  string          `yaml:"path"` // каталог для file, файл базы для sqlite
	DSN   string          `yaml:"dsn"`  // строка подключения postgres
	Redis RedisConfig     `yaml:"redis"`
	Pool  PoolConfig      `yaml:"pool"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
	DB     int    `yaml:"db"`
}

type PoolConfig struct {
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type SessionConfig struct {
	Key string `yaml:"key"`
}

type TasksConfig struct {
	Key      string           `yaml:"key"`
	IDFormat service.IDFormat `yaml:"id_format"`
}

type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: repository.TypeFile,
			Path: ".taskdesk",
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "taskdesk:",
			},
		},
		Session: SessionConfig{Key: "username"},
		Tasks: TasksConfig{
			Key:      "tasks",
			IDFormat: service.IDFormatUUID,
		},
		Worker: WorkerConfig{
			Interval:  time.Minute,
			BatchSize: 100,
		},
	}
}

// Load читает config.yml (отсутствие файла не ошибка), затем .env и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TASKDESK_STORAGE_TYPE"); v != "" {
		c.Storage.Type = repository.Type(v)
	}
	if v := os.Getenv("TASKDESK_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("TASKDESK_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("TASKDESK_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("TASKDESK_ID_FORMAT"); v != "" {
		c.Tasks.IDFormat = service.IDFormat(v)
	}
	if v := os.Getenv("TASKDESK_LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKDESK_LOG_DEVELOPMENT: %w", err)
		}
		c.Logging.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	if !c.Storage.Type.Valid() {
		return fmt.Errorf("storage.type: неизвестный тип %q", c.Storage.Type)
	}
	switch c.Storage.Type {
	case repository.TypeFile, repository.TypeSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path обязателен для %s", c.Storage.Type)
		}
	case repository.TypePostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn обязателен для postgres")
		}
	case repository.TypeRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr обязателен для redis")
		}
	}
	switch c.Tasks.IDFormat {
	case "", service.IDFormatUUID, service.IDFormatNanoID:
	default:
		return fmt.Errorf("tasks.id_format: неизвестный формат %q", c.Tasks.IDFormat)
	}
	if c.Worker.Interval <= 0 {
		return errors.New("worker.interval должен быть больше нуля")
	}
	if c.Worker.BatchSize <= 0 {
		return errors.New("worker.batch_size должен быть больше нуля")
	}
	return nil
}
