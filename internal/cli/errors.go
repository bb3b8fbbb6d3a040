package cli

import (
	"errors"
	"taskDesk/internal/service"
)

// ExitCode переводит ошибку команды в код завершения процесса
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var busErr *service.BusinessError
	if !errors.As(err, &busErr) {
		return 1
	}
	switch busErr.Code {
	case service.CodeValidation:
		return 2
	case service.CodeNotFound, service.CodeAmbiguousID:
		return 3
	case service.CodeUnauthenticated:
		return 4
	default:
		return 1
	}
}
