package cli

import (
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Actions taken from this machine, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := svc.store.ListActivity(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": activityTable(items)})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries")
	return cmd
}
