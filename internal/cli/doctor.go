package cli

import (
	"errors"
	"fmt"
	"net/http"

	"shobdo-cli/internal/api"

	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found problems")

type checkLevel string

const (
	checkOK    checkLevel = "ok"
	checkWarn  checkLevel = "warn"
	checkError checkLevel = "error"
)

type doctorCheck struct {
	Name   string     `json:"name"`
	Level  checkLevel `json:"level"`
	Detail string     `json:"detail"`
}

type doctorReport []doctorCheck

func (r doctorReport) hasErrors() bool {
	for _, c := range r {
		if c.Level == checkError {
			return true
		}
	}
	return false
}

func (r doctorReport) TableHeaders() []string { return []string{"CHECK", "STATUS", "DETAIL"} }

func (r doctorReport) TableRows() [][]string {
	out := make([][]string, 0, len(r))
	for _, c := range r {
		out = append(out, []string{c.Name, string(c.Level), c.Detail})
	}
	return out
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local store, the API server and the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.services(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			var report doctorReport

			if _, err := svc.store.ListActivity(ctx, 1); err != nil {
				report = append(report, doctorCheck{"store", checkError, err.Error()})
			} else {
				report = append(report, doctorCheck{"store", checkOK, svc.store.Path()})
			}

			// The health check must not print the "session expired" notice; the session check
			// below reports it instead.
			svc.client.SetUnauthorizedHandler(nil)
			signedIn := svc.session.IsAuthenticated()
			identity, role := svc.session.Identity(), svc.session.Role()
			path := "/"
			if signedIn {
				path = "/dramas/"
			}
			perr := svc.client.Send(ctx, http.MethodGet, path, nil, nil)
			var apiErr *api.APIError
			switch {
			case perr == nil, api.IsUnauthorized(perr):
				report = append(report, doctorCheck{"api", checkOK, svc.client.BaseURL()})
			case errors.As(perr, &apiErr):
				report = append(report, doctorCheck{"api", checkOK, fmt.Sprintf("%s (HTTP %d)", svc.client.BaseURL(), apiErr.Status)})
			default:
				report = append(report, doctorCheck{"api", checkError, fmt.Sprintf("%s: %s", svc.client.BaseURL(), perr.Error())})
			}

			switch {
			case !signedIn:
				report = append(report, doctorCheck{"session", checkWarn, "not signed in"})
			case api.IsUnauthorized(perr):
				report = append(report, doctorCheck{"session", checkError, "session expired; sign in again"})
			default:
				report = append(report, doctorCheck{"session", checkOK, fmt.Sprintf("%s (%s)", identity, role)})
			}

			meta := map[string]any{
				"checks":    len(report),
				"hasErrors": report.hasErrors(),
			}
			if err := writeOut(cmd, app, map[string]any{"data": report, "meta": meta}); err != nil {
				return err
			}
			if fail && report.hasErrors() {
				return writeErr(cmd, errDoctorIssuesFound)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
