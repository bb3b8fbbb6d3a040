package storage

import "context"

// Slot держит значение в памяти и зеркалирует каждое изменение в хранилище.
// Значение в памяти обновляется даже если запись не удалась.
type Slot[T any] struct {
	adapter *Adapter
	key     string
	value   T
	source  Source
}

// Open загружает слот, при отсутствии данных значение равно initial
func Open[T any](ctx context.Context, adapter *Adapter, key string, initial T) *Slot[T] {
	res := Read(ctx, adapter, key, initial)
	return &Slot[T]{
		adapter: adapter,
		key:     key,
		value:   res.Value,
		source:  res.Source,
	}
}

func (s *Slot[T]) Key() string {
	return s.key
}

func (s *Slot[T]) Get() T {
	return s.value
}

// LoadedFrom - источник значения при открытии слота
func (s *Slot[T]) LoadedFrom() Source {
	return s.source
}

func (s *Slot[T]) Set(ctx context.Context, value T) {
	s.value = value
	s.adapter.Write(ctx, s.key, value)
}

// Update вычисляет новое значение из текущего и сохраняет его
func (s *Slot[T]) Update(ctx context.Context, fn func(T) T) T {
	s.Set(ctx, fn(s.value))
	return s.value
}
