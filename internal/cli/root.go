package cli

import (
	"context"
	"fmt"
	"os"
	"taskDesk/internal/app"
	"taskDesk/internal/config"
	"taskDesk/internal/logger"
	"taskDesk/internal/middleware"
	"taskDesk/internal/service"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AppFactory собирает приложение из конфигурации. В тестах подменяется на сборку поверх inmemory
type AppFactory func(ctx context.Context, cfg *config.Config, opts ...service.StoreOption) (*app.App, error)

// DefaultFactory открывает хранилище из конфигурации
func DefaultFactory(ctx context.Context, cfg *config.Config, opts ...service.StoreOption) (*app.App, error) {
	return app.New(cfg).Init(ctx, opts...)
}

const commandTimeout = 30 * time.Second

// runner - общее состояние команд одного запуска
type runner struct {
	factory    AppFactory
	configPath string
	cfg        *config.Config
	app        *app.App
}

func NewRootCommand(factory AppFactory) *cobra.Command {
	r := &runner{factory: factory}

	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Личный список задач в терминале",
		Long:          "tasks хранит список задач с приоритетами и сроками в выбранном хранилище: файл, sqlite, postgres или redis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			r.close()
		},
	}
	root.PersistentFlags().StringVarP(&r.configPath, "config", "c", config.DefaultPath, "путь к config.yml")

	root.AddCommand(
		newLoginCmd(r),
		newLogoutCmd(r),
		newWhoamiCmd(r),
		newAddCmd(r),
		newEditCmd(r),
		newToggleCmd(r),
		newRemoveCmd(r),
		newClearCompletedCmd(r),
		newListCmd(r),
		newWatchCmd(r),
	)
	middleware.Apply(root,
		middleware.RunID,
		middleware.Logging,
		middleware.Timeout(commandTimeout),
	)
	return root
}

func (r *runner) open(ctx context.Context) error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}
	r.cfg = cfg

	a, err := r.factory(ctx, cfg, service.WithNotifier(logEvent))
	if err != nil {
		return fmt.Errorf("инициализация приложения: %w", err)
	}
	r.app = a
	return nil
}

func (r *runner) close() {
	if r.app != nil {
		r.app.Close()
		r.app = nil
	}
}

// requireLogin пропускает команды со списком только после login
func (r *runner) requireLogin(ctx context.Context) error {
	if !r.app.Session.IsAuthenticated(ctx) {
		return service.NewUnauthenticated()
	}
	return nil
}

func logEvent(e service.Event) {
	fields := []zap.Field{zap.String("event", string(e.Type))}
	if e.Type == service.EventCleared {
		fields = append(fields, zap.Int("count", e.Count))
	} else {
		fields = append(fields, zap.String("id", e.Task.ID))
	}
	logger.Debug("CLI: Событие хранилища", fields...)
}

func Execute() {
	root := NewRootCommand(DefaultFactory)
	if err := root.ExecuteContext(context.Background()); err != nil {
		// после ошибки в RunE cobra не вызывает PostRun
		root.PersistentPostRun(root, nil)
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(ExitCode(err))
	}
}
