// Package tui is the interactive dashboard: sign in, overview, dramas, contacts and
// sub-admins, driven through the same repositories and action orchestrator as the CLI.
package tui

import (
	"context"
	"log/slog"

	"shobdo-cli/internal/action"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps are the services the dashboard drives. Session, Auth, Dramas and Contacts
// are required.
type Deps struct {
	Session sessionView
	// Client receives the hook that returns the UI to the sign-in screen after a 401.
	Client interface{ SetUnauthorizedHandler(func()) }

	Auth     authService
	Dramas   dramaStore
	Contacts contactStore
	SMS      action.SMSSender
	Recorder action.Recorder
	Logger   *slog.Logger
}

func Run(d Deps) error {
	applyColorProfilePreference()
	applyThemePreference()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newAppModel(ctx, d)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if d.Client != nil {
		d.Client.SetUnauthorizedHandler(func() { p.Send(sessionExpiredMsg{}) })
		defer d.Client.SetUnauthorizedHandler(nil)
	}
	_, err := p.Run()
	return err
}
