package cli

import (
	"fmt"
	"strings"
	"taskDesk/internal/models/task"
	"taskDesk/internal/service"
	"time"

	"github.com/spf13/cobra"
)

var dueLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDue принимает RFC3339 или дату без времени (полночь UTC)
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, service.NewValidationError("due", "ожидается YYYY-MM-DD или RFC3339, получено "+s)
}

// findTask достаёт задачу из списка, который вернула операция хранилища
func findTask(tasks []task.Task, id string) (task.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

func newAddCmd(r *runner) *cobra.Command {
	var (
		description string
		due         string
		priority    string
	)
	cmd := &cobra.Command{
		Use:   "add <название>",
		Short: "Добавить задачу в начало списка",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requireLogin(ctx); err != nil {
				return err
			}

			// неизвестный приоритет становится medium
			draft := task.Draft{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    task.NormalizePriority(task.Priority(priority)),
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				draft.DueDate = &d
			}

			tasks, ok := r.app.Store.Add(ctx, draft)
			if !ok {
				return service.NewValidationError("title", "название не может быть пустым")
			}
			renderTask(cmd.OutOrStdout(), "Добавлена", tasks[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "описание")
	cmd.Flags().StringVar(&due, "due", "", "срок: YYYY-MM-DD или RFC3339")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "приоритет: low, medium, high (иное - medium)")
	return cmd
}

func newEditCmd(r *runner) *cobra.Command {
	var (
		title       string
		description string
		due         string
		noDue       bool
		priority    string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Изменить поля задачи",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requireLogin(ctx); err != nil {
				return err
			}
			t, err := r.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}

			var patch task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return service.NewValidationError("title", "название не может быть пустым")
				}
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if noDue {
				patch.ClearDueDate = true
			} else if flags.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			if flags.Changed("priority") {
				p := task.NormalizePriority(task.Priority(priority))
				patch.Priority = &p
			}
			if patch.IsEmpty() {
				return service.NewValidationError("patch", "не задано ни одного поля для изменения")
			}

			tasks, ok := r.app.Store.Edit(ctx, t.ID, patch)
			if !ok {
				return service.NewNotFound("Задача", t.ID)
			}
			if updated, ok := findTask(tasks, t.ID); ok {
				renderTask(cmd.OutOrStdout(), "Изменена", updated)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "новое название")
	cmd.Flags().StringVarP(&description, "description", "d", "", "новое описание")
	cmd.Flags().StringVar(&due, "due", "", "новый срок: YYYY-MM-DD или RFC3339")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "убрать срок")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "новый приоритет: low, medium, high")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")
	return cmd
}

func newToggleCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Переключить отметку о выполнении",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requireLogin(ctx); err != nil {
				return err
			}
			t, err := r.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			tasks, ok := r.app.Store.ToggleCompletion(ctx, t.ID)
			if !ok {
				return service.NewNotFound("Задача", t.ID)
			}
			toggled, ok := findTask(tasks, t.ID)
			if !ok {
				return service.NewNotFound("Задача", t.ID)
			}
			verb := "Выполнена"
			if !toggled.Completed {
				verb = "Снова в работе"
			}
			renderTask(cmd.OutOrStdout(), verb, toggled)
			return nil
		},
	}
}

func newRemoveCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Удалить задачу",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requireLogin(ctx); err != nil {
				return err
			}
			t, err := r.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			if _, ok := r.app.Store.Delete(ctx, t.ID); !ok {
				return service.NewNotFound("Задача", t.ID)
			}
			renderTask(cmd.OutOrStdout(), "Удалена", t)
			return nil
		},
	}
}

func newClearCompletedCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Удалить все выполненные задачи",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := r.requireLogin(ctx); err != nil {
				return err
			}
			_, removed := r.app.Store.ClearCompleted(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Удалено выполненных: %d\n", removed)
			return nil
		},
	}
}
