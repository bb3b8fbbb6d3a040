package middleware

import (
	"context"
	"errors"
	"taskDesk/internal/logger"
	"taskDesk/internal/service"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const RunIDKey contextKey = "run_id"

// LongRunning - аннотация команды, для которой Timeout не применяется
const LongRunning = "long-running"

type RunE func(cmd *cobra.Command, args []string) error

type Middleware func(next RunE) RunE

// Apply оборачивает RunE всех команд дерева. Первая middleware оказывается внешней
func Apply(root *cobra.Command, mws ...Middleware) {
	if root.RunE != nil {
		next := RunE(root.RunE)
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		root.RunE = next
	}
	for _, child := range root.Commands() {
		Apply(child, mws...)
	}
}

func RunID(next RunE) RunE {
	return func(cmd *cobra.Command, args []string) error {
		runID := uuid.New().String()
		cmd.SetContext(context.WithValue(cmd.Context(), RunIDKey, runID))
		return next(cmd, args)
	}
}

func Logging(next RunE) RunE {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		runID := GetRunID(cmd.Context())

		logger.Debug(
			"CLI_IN: Запуск команды",
			zap.String("run_id", runID),
			zap.String("command", cmd.CommandPath()),
			zap.Int("args", len(args)),
		)

		err := next(cmd, args)

		logLevel := zap.InfoLevel
		fields := []zap.Field{
			zap.String("run_id", runID),
			zap.String("command", cmd.CommandPath()),
			zap.Duration("ms", time.Since(start)),
		}
		if err != nil {
			logLevel = levelFor(err)
			fields = append(fields, zap.Error(err))
		}
		logger.Log(logLevel, "CLI_OUT: Завершение команды", fields...)
		return err
	}
}

// ошибки ввода пользователя не считаются сбоем
func levelFor(err error) zapcore.Level {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		return zap.WarnLevel
	}
	return zap.ErrorLevel
}

func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// Timeout ограничивает время работы команды, если она не помечена LongRunning
func Timeout(timeout time.Duration) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[LongRunning]; ok {
				return next(cmd, args)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			cmd.SetContext(ctx)

			err := next(cmd, args)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Warn(
					"CLI: Таймаут команды",
					zap.String("run_id", GetRunID(ctx)),
					zap.String("command", cmd.CommandPath()),
					zap.Duration("ms", timeout),
				)
				if err == nil {
					err = ctx.Err()
				}
			}
			return err
		}
	}
}
