package cli

import (
	"context"
	"strings"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/spf13/cobra"
)

func newContactsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Contact commands (SMS recipients, admin only)",
	}
	cmd.AddCommand(newContactsListCmd(app))
	cmd.AddCommand(newContactsCreateCmd(app))
	cmd.AddCommand(newContactsUpdateCmd(app))
	cmd.AddCommand(newContactsDeleteCmd(app))
	return cmd
}

func newContactsListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			all, err := svc.contacts.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			shown := view.FilterEntities(all, search, view.ContactFields)
			meta := map[string]any{"total": len(all), "label": view.ContactCountLabel(len(all))}
			if q := view.NormalizeQuery(search); q != "" {
				meta["query"] = q
			}
			if len(shown) == 0 {
				meta["empty"] = view.EmptyFor("contacts", search)
			}
			return writeOut(cmd, app, map[string]any{"data": contactTable(shown), "meta": meta})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive match on name or mobile number")
	return cmd
}

type contactFlags struct {
	name   string
	mobile string
}

func (f *contactFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Contact name")
	cmd.Flags().StringVar(&f.mobile, "mobile", "", "Mobile number")
}

func (f *contactFlags) apply(cmd *cobra.Command, base model.ContactInput) model.ContactInput {
	if cmd.Flags().Changed("name") {
		base.Name = f.name
	}
	if cmd.Flags().Changed("mobile") {
		base.MobileNumber = f.mobile
	}
	return base
}

func newContactsCreateCmd(app *App) *cobra.Command {
	var f contactFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			in := f.apply(cmd, model.ContactInput{})
			res, err := svc.actions.Run(cmd.Context(), action.ControlContactCreate, action.CreateContact(svc.contacts, in), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}
	f.bind(cmd)
	return cmd
}

func newContactsUpdateCmd(app *App) *cobra.Command {
	var f contactFlags

	cmd := &cobra.Command{
		Use:   "update <contact-id>",
		Short: "Edit a contact; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := findContact(cmd.Context(), svc, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			in := f.apply(cmd, model.ContactInput{Name: c.Name, MobileNumber: c.MobileNumber})
			res, err := svc.actions.Run(cmd.Context(), action.ContactRowControl("update", c.ID), action.UpdateContact(svc.contacts, c.ID, in), nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}
	f.bind(cmd)
	return cmd
}

func newContactsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <contact-id>",
		Short: "Remove a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			c := model.Contact{ID: id, Name: id}
			res, err := svc.actions.Run(cmd.Context(), action.ContactRowControl("delete", c.ID), action.DeleteContact(svc.contacts, c), confirmer(cmd, yes))
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

func findContact(ctx context.Context, svc *services, id string) (model.Contact, error) {
	id = strings.TrimSpace(id)
	all, err := svc.contacts.List(ctx)
	if err != nil {
		return model.Contact{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Contact{}, errNotFound("contact", id)
}
