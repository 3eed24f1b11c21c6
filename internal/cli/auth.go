package cli

import (
	"context"
	"strings"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/model"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			creds := model.Credentials{Email: email, Password: password}
			if creds.Password == "" {
				creds.Password = app.cfg.Password
			}
			if creds.Password == "" {
				pw, err := readPassword(cmd)
				if err != nil {
					return writeErr(cmd, err)
				}
				creds.Password = pw
			}
			if err := action.ValidateCredentials(&creds); err != nil {
				return writeErr(cmd, err)
			}

			// A 401 here means bad credentials, not an expired session.
			svc.client.SetUnauthorizedHandler(nil)
			res, err := svc.auth.Login(cmd.Context(), creds.Email, creds.Password)
			record(cmd.Context(), svc, "auth.login", creds.Email, err)
			if err != nil {
				cmd.PrintErrln(err.Error())
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"email": creds.Email,
				"role":  res.Role,
			}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (default: SHOBDO_PASSWORD, else prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			who := svc.session.Identity()
			if err := svc.auth.Logout(); err != nil {
				return writeErr(cmd, err)
			}
			if who != "" {
				record(cmd.Context(), svc, "auth.logout", who, nil)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"signedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"authenticated": svc.session.IsAuthenticated(),
				"email":         svc.session.Identity(),
				"role":          svc.session.Role(),
				"admin":         svc.session.HasAdminRole(),
				"apiUrl":        svc.client.BaseURL(),
			}})
		},
	}
}

func newSubAdminsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subadmins",
		Short: "Sub-admin accounts (admin only)",
	}
	cmd.AddCommand(newSubAdminsCreateCmd(app))
	return cmd
}

func newSubAdminsCreateCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sub-admin who can view and edit dramas",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if password == "" {
				pw, err := readPassword(cmd)
				if err != nil {
					return writeErr(cmd, err)
				}
				password = pw
			}
			a := action.CreateSubAdmin(svc.auth, model.Credentials{Email: email, Password: password})
			res, err := svc.actions.Run(cmd.Context(), action.ControlSubAdmin, a, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, actionOut(res))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Sub-admin email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (default: prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// record appends to the local activity log; failures only get logged.
func record(ctx context.Context, svc *services, kind, target string, err error) {
	a := model.Activity{Actor: svc.session.Identity(), Kind: kind, Target: target, OK: err == nil}
	if err != nil {
		a.Message = err.Error()
	}
	if a.Actor == "" {
		a.Actor = strings.TrimSpace(target)
	}
	if rerr := svc.store.AppendActivity(context.WithoutCancel(ctx), a); rerr != nil {
		svc.logger.Warn("record activity", "kind", kind, "err", rerr)
	}
}
