package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"taskDesk/internal/logger"
	repo "taskDesk/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Storage хранит каждый слот в отдельном файле каталога
type Storage struct {
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) (*Storage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: Не удалось создать каталог данных", err, zap.String("dir", dir))
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}
	logger.Info("Repository: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{fs: fs, dir: dir}, nil
}

// NewOS - файловое хранилище на диске
func NewOS(dir string) (*Storage, error) {
	return New(afero.NewOsFs(), dir)
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".slot")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("проверка каталога: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не каталог: %w", s.dir, repo.ErrUnavailable)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("чтение слота %s: %w", key, err)
	}
	return string(data), nil
}

// Set пишет во временный файл и переименовывает его, чтобы читатель
// никогда не увидел недописанный слот
func (s *Storage) Set(ctx context.Context, key, value string) error {
	tmp, err := afero.TempFile(s.fs, s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("запись слота %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("закрытие слота %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, s.path(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("сохранение слота %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("удаление слота %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
