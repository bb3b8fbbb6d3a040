package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"taskDesk/internal/middleware"
	"taskDesk/internal/models/task"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd(r *runner) *cobra.Command {
	var (
		interval time.Duration
		once     bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Периодически показывать просроченные задачи",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.requireLogin(cmd.Context()); err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				r.cfg.Worker.Interval = interval
			}

			out := cmd.OutOrStdout()
			w := r.app.OverdueWorker(func(overdue []task.Task) {
				fmt.Fprintf(out, "%s %s\n",
					labelStyle.Render(time.Now().Format("15:04:05")),
					overdueStyle.Render(fmt.Sprintf("Просрочено: %d", len(overdue))),
				)
				for _, t := range overdue {
					renderTask(out, " ", t)
				}
			})
			if once {
				w.Check(cmd.Context())
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			w.Start(ctx)
			return nil
		},
	}
	cmd.Annotations = map[string]string{middleware.LongRunning: "true"}
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "период проверки")
	cmd.Flags().BoolVar(&once, "once", false, "проверить один раз и выйти")
	return cmd
}
