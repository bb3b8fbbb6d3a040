package service

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

// IDGenerator выдаёт новый непрозрачный идентификатор задачи
type IDGenerator func() string

type IDFormat string

const (
	IDFormatUUID   IDFormat = "uuid"
	IDFormatNanoID IDFormat = "nanoid"
)

const DefaultNanoIDLength = 12

func UUIDGenerator() IDGenerator {
	return uuid.NewString
}

func NanoIDGenerator(length int) (IDGenerator, error) {
	if length <= 0 {
		length = DefaultNanoIDLength
	}
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("создание генератора nanoid: %w", err)
	}
	return gen, nil
}

// NewIDGenerator выбирает генератор по формату из конфигурации
func NewIDGenerator(format IDFormat) (IDGenerator, error) {
	switch format {
	case "", IDFormatUUID:
		return UUIDGenerator(), nil
	case IDFormatNanoID:
		return NanoIDGenerator(DefaultNanoIDLength)
	default:
		return nil, NewValidationError("id_format", fmt.Sprintf("неизвестный формат %q", format))
	}
}
