package tui

import (
	"context"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"
)

type screen int

const (
	screenLogin screen = iota
	screenOverview
	screenDramas
	screenContacts
	screenSubAdmins
)

func (s screen) title() string {
	switch s {
	case screenLogin:
		return "Sign in"
	case screenOverview:
		return "Overview"
	case screenDramas:
		return "Dramas"
	case screenContacts:
		return "Contacts"
	case screenSubAdmins:
		return "Sub-admins"
	default:
		return ""
	}
}

// adminOnly reports whether only admins may open the section.
func (s screen) adminOnly() bool {
	return s == screenContacts || s == screenSubAdmins
}

type modalKind int

const (
	modalNone modalKind = iota
	modalDramaForm
	modalContactForm
	modalSubAdminForm
	modalConfirm
	modalHelp
)

type sessionView interface {
	IsAuthenticated() bool
	HasAdminRole() bool
	Identity() string
	Role() model.Role
}

type authService interface {
	Login(ctx context.Context, email, password string) (model.LoginResponse, error)
	Logout() error
	action.SubAdminCreator
}

type dramaStore interface {
	action.Store[model.Drama, model.DramaInput]
	Snapshot() []model.Drama
}

type contactStore interface {
	action.Store[model.Contact, model.ContactInput]
	Snapshot() []model.Contact
}

// Messages.
type (
	loginDoneMsg struct {
		err error
	}

	overviewLoadedMsg struct {
		overview view.Overview
		err      error
	}

	actionDoneMsg struct {
		control action.Control
		kind    string
		res     action.Result
	}

	// sessionExpiredMsg is sent from the transport's 401 hook.
	sessionExpiredMsg struct{}

	toastTickMsg time.Time
)
