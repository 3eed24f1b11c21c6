package cli

import (
	"time"

	"shobdo-cli/internal/dashboard"

	"github.com/spf13/cobra"
)

func newOverviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Totals and the next upcoming shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := signedIn(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ov, err := dashboard.Loader{
				Dramas:   svc.dramas,
				Contacts: svc.contacts,
				IsAdmin:  svc.session.HasAdminRole,
				Now:      time.Now,
			}.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": overviewOut{ov}})
		},
	}
}
