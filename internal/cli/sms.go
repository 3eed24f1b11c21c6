package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/scheduler"

	"github.com/spf13/cobra"
)

func newSMSCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Send show notifications (admin only)",
	}
	cmd.AddCommand(newSMSSendCmd(app))
	cmd.AddCommand(newSMSScheduledCmd(app))
	cmd.AddCommand(newSMSWatchCmd(app))
	return cmd
}

func newSMSSendCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "send <drama-id>",
		Short: "Send the drama's SMS to every contact now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := dramaRef(args[0])
			res, err := svc.actions.Run(cmd.Context(), action.DramaRowControl("sms", d.ID), action.SendSMS(svc.sms, d), confirmer(cmd, yes))
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

func newSMSScheduledCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "Ask the API to send reminders for shows two days from now",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sch := newScheduler(app, svc)
			res, err := sch.RunOnce(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"ok": true, "message": res.Message}})
		},
	}
}

func newSMSWatchCmd(app *App) *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Trigger the scheduled send on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := adminOnly(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runs := make(chan scheduler.Run, 1)
			sch := newScheduler(app, svc,
				scheduler.WithRunHook(func(r scheduler.Run) {
					select {
					case runs <- r:
					case <-ctx.Done():
					}
				}),
			)
			if err := sch.Start(spec); err != nil {
				return writeErr(cmd, err)
			}
			defer sch.Stop()
			if err := writeOut(cmd, app, map[string]any{"data": map[string]any{"schedule": spec, "next": sch.Next().Format(time.RFC3339)}}); err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case r := <-runs:
					out := map[string]any{"at": r.At.Format(time.RFC3339), "ok": r.Err == nil, "message": r.Message}
					if err := writeOut(cmd, app, map[string]any{"data": out}); err != nil {
						return err
					}
					// An expired session will not recover on its own.
					if r.Err != nil && !svc.session.IsAuthenticated() {
						return writeErr(cmd, r.Err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&spec, "schedule", app.cfg.Schedule, "Cron spec, 5 fields or @every/@daily (SHOBDO_SCHEDULE)")
	return cmd
}

// newScheduler applies the per-request timeout and activity recording
// shared by the one-shot and cron triggers.
func newScheduler(app *App, svc *services, opts ...scheduler.Option) *scheduler.Scheduler {
	base := []scheduler.Option{
		scheduler.WithRecorder(svc.store, svc.session.Identity()),
		scheduler.WithTimeout(app.Timeout),
	}
	return scheduler.New(svc.sms, app.logger, append(base, opts...)...)
}
