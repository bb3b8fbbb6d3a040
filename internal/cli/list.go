package cli

import (
	"encoding/json"
	"taskDesk/internal/service"
	"taskDesk/internal/view"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(r *runner) *cobra.Command {
	var (
		filter string
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Показать задачи",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.requireLogin(cmd.Context()); err != nil {
				return err
			}
			f, err := view.ParseFilter(filter)
			if err != nil {
				return service.NewValidationError("filter", err.Error())
			}

			dashboard := view.Build(r.app.Store.Tasks(), f, search, time.Now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dashboard)
			}
			renderDashboard(cmd.OutOrStdout(), dashboard)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(view.FilterAll), "all, pending или completed")
	cmd.Flags().StringVarP(&search, "search", "s", "", "подстрока в названии или описании")
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести в JSON")
	return cmd
}
