package cli

import (
	"context"
	"strings"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/spf13/cobra"
)

func newDramasCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dramas",
		Aliases: []string{"drama"},
		Short:   "Drama commands (shows and their SMS text)",
	}
	cmd.AddCommand(newDramasListCmd(app))
	cmd.AddCommand(newDramasUpcomingCmd(app))
	cmd.AddCommand(newDramasCreateCmd(app))
	cmd.AddCommand(newDramasUpdateCmd(app))
	cmd.AddCommand(newDramasDeleteCmd(app))
	return cmd
}

func newDramasListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dramas with their date status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := signedIn(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			all, err := svc.dramas.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			now := time.Now()
			shown := view.FilterEntities(all, search, view.DramaFields)
			meta := map[string]any{"total": len(all), "counts": view.CountDramas(shown, now)}
			if q := view.NormalizeQuery(search); q != "" {
				meta["query"] = q
			}
			if len(shown) == 0 {
				meta["empty"] = view.EmptyFor("dramas", search)
			}
			return writeOut(cmd, app, map[string]any{"data": dramaTable(view.DramaRows(shown, now)), "meta": meta})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on name or SMS text")
	return cmd
}

func newDramasUpcomingCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Shows dated today or later, soonest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := signedIn(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			all, err := svc.dramas.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			now := time.Now()
			top := view.TopUpcoming(all, limit, now)
			out := map[string]any{"data": dramaTable(view.DramaRows(top, now))}
			if len(top) == 0 {
				out["meta"] = map[string]any{"empty": view.EmptyFor("upcoming", "")}
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", view.OverviewLimit, "Maximum number of shows")
	return cmd
}

type dramaFlags struct {
	name string
	date string
	sms  string
}

func (f *dramaFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Drama name")
	cmd.Flags().StringVar(&f.date, "date", "", "Display date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.sms, "sms", "", "SMS text sent to contacts (max 500 characters)")
}

// apply overlays the flags the user actually set onto base.
func (f *dramaFlags) apply(cmd *cobra.Command, base model.DramaInput) model.DramaInput {
	if cmd.Flags().Changed("name") {
		base.DramaName = f.name
	}
	if cmd.Flags().Changed("date") {
		base.DisplayDate = f.date
	}
	if cmd.Flags().Changed("sms") {
		base.CustomSMS = f.sms
	}
	return base
}

func newDramasCreateCmd(app *App) *cobra.Command {
	var f dramaFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a drama (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			in := f.apply(cmd, model.DramaInput{})
			res, err := svc.actions.Run(cmd.Context(), action.ControlDramaCreate, action.CreateDrama(svc.dramas, in), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}
	f.bind(cmd)
	return cmd
}

func newDramasUpdateCmd(app *App) *cobra.Command {
	var f dramaFlags

	cmd := &cobra.Command{
		Use:   "update <drama-id>",
		Short: "Edit a drama; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := signedIn(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			d, err := findDrama(cmd.Context(), svc, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			in := f.apply(cmd, model.DramaInput{DramaName: d.DramaName, DisplayDate: d.DisplayDate, CustomSMS: d.CustomSMS})
			res, err := svc.actions.Run(cmd.Context(), action.DramaRowControl("update", d.ID), action.UpdateDrama(svc.dramas, d.ID, in), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}
	f.bind(cmd)
	return cmd
}

func newDramasDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <drama-id>",
		Short: "Delete a drama and its SMS logs (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := dramaRef(args[0])
			res, err := svc.actions.Run(cmd.Context(), action.DramaRowControl("delete", d.ID), action.DeleteDrama(svc.dramas, d), confirmer(cmd, yes))
			if err != nil {
				return writeErr(cmd, err)
			}
			if res.State == action.Idle {
				return writeOut(cmd, app, cancelled())
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// dramaRef names a drama by id alone so nothing is fetched before the
// confirmation prompt. The API rejects ids it does not know.
func dramaRef(id string) model.Drama {
	id = strings.TrimSpace(id)
	return model.Drama{ID: id, DramaName: id}
}

func findDrama(ctx context.Context, svc *services, id string) (model.Drama, error) {
	id = strings.TrimSpace(id)
	all, err := svc.dramas.List(ctx)
	if err != nil {
		return model.Drama{}, err
	}
	for _, d := range all {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Drama{}, errNotFound("drama", id)
}
