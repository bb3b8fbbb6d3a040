// Package storage связывает значения приложения с именованными слотами
// долговременного хранилища. Адаптер никогда не возвращает ошибок вызывающему:
// любой сбой сводится к "используй то значение, что уже есть".
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"taskDesk/internal/logger"
	"taskDesk/internal/repository"

	"go.uber.org/zap"
)

// Source - откуда взялось прочитанное значение
type Source int

const (
	// SourceDefault - хранилище недоступно, ключа нет или чтение не удалось
	SourceDefault Source = iota
	// SourceParsed - текст слота успешно разобран
	SourceParsed
	// SourceRaw - текст слота не разобрался и возвращён как есть
	SourceRaw
)

func (s Source) String() string {
	switch s {
	case SourceParsed:
		return "parsed"
	case SourceRaw:
		return "raw"
	default:
		return "default"
	}
}

// Result - результат чтения слота.
// При SourceRaw поле Raw содержит исходный текст без изменений; если T - string,
// тот же текст лежит и в Value, иначе Value равно начальному значению.
type Result[T any] struct {
	Value  T
	Raw    string
	Source Source
}

type Adapter struct {
	kv repository.KV
}

// New создаёт адаптер. nil означает, что долговременного хранилища нет
// и приложение работает только в памяти.
func New(kv repository.KV) *Adapter {
	return &Adapter{kv: kv}
}

func (a *Adapter) Available() bool {
	return a != nil && a.kv != nil
}

// ReadRaw возвращает текст слота как есть. false - хранилища нет, ключа нет,
// текст пуст или чтение не удалось.
func (a *Adapter) ReadRaw(ctx context.Context, key string) (string, bool) {
	if !a.Available() {
		return "", false
	}

	raw, err := a.kv.Get(ctx, key)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case errors.Is(err, repository.ErrUnavailable):
			logger.Debug("Storage: Хранилище недоступно, используется начальное значение", zap.String("key", key))
		default:
			logger.Warn("Storage: Не удалось прочитать слот", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return raw, raw != ""
}

// Read читает слот key, initial возвращается во всех случаях, когда разобранного значения нет
func Read[T any](ctx context.Context, a *Adapter, key string, initial T) Result[T] {
	res := Result[T]{Value: initial, Source: SourceDefault}
	raw, ok := a.ReadRaw(ctx, key)
	if !ok {
		return res
	}

	var parsed T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Debug("Storage: Слот не разобран, возвращается исходный текст", zap.String("key", key), zap.Error(err))
		res.Raw = raw
		res.Source = SourceRaw
		if s, ok := any(&res.Value).(*string); ok {
			*s = raw
		}
		return res
	}

	res.Value = parsed
	res.Source = SourceParsed
	return res
}

// Write сериализует value в JSON и сохраняет под ключом key.
// Ошибки только логируются.
func (a *Adapter) Write(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Storage: Не удалось сериализовать значение", err, zap.String("key", key))
		return
	}
	a.WriteRaw(ctx, key, string(data))
}

// WriteRaw сохраняет текст без сериализации
func (a *Adapter) WriteRaw(ctx context.Context, key, text string) {
	if !a.Available() {
		return
	}
	if err := a.kv.Set(ctx, key, text); err != nil {
		logger.Error("Storage: Не удалось записать слот", err, zap.String("key", key))
	}
}

// Remove удаляет слот
func (a *Adapter) Remove(ctx context.Context, key string) {
	if !a.Available() {
		return
	}
	if err := a.kv.Delete(ctx, key); err != nil {
		logger.Error("Storage: Не удалось удалить слот", err, zap.String("key", key))
	}
}
