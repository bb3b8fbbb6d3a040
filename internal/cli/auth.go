package cli

import (
	"fmt"
	"strings"
	"taskDesk/internal/service"

	"github.com/spf13/cobra"
)

func newLoginCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "login <имя>",
		Short: "Войти под именем (без пароля)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if !r.app.Session.Login(cmd.Context(), name) {
				return service.NewValidationError("username", "имя не может быть пустым")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Добро пожаловать, %s\n", titleStyle.Render(strings.TrimSpace(name)))
			return nil
		},
	}
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Выход выполнен")
			return nil
		},
	}
}

func newWhoamiCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Показать текущего пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.requireLogin(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.app.Session.Username(cmd.Context()))
			return nil
		},
	}
}
