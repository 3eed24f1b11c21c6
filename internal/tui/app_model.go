package tui

import (
	"context"
	"log/slog"
	"time"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/dashboard"
	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// pendingConfirm is a destructive action waiting on the confirm modal.
type pendingConfirm struct {
	control action.Control
	action  action.Action
	focus   confirmModalFocus
}

type appModel struct {
	ctx    context.Context
	logger *slog.Logger
	now    func() time.Time

	session  sessionView
	auth     authService
	dramas   dramaStore
	contacts contactStore
	sms      action.SMSSender
	recorder action.Recorder
	orch     *action.Orchestrator
	loader   dashboard.Loader

	width  int
	height int

	screen screen
	modal  modalKind

	loginForm   form
	loggingIn   bool
	editForm    form
	formControl action.Control

	overview view.Overview
	loading  bool
	loaded   bool

	dramaList     list.Model
	contactList   list.Model
	dramaSearch   textinput.Model
	contactSearch textinput.Model
	searching     bool

	confirm  *pendingConfirm
	inflight int
	spinner  spinner.Model
	help     viewport.Model

	toasts []toast
}

func newAppModel(ctx context.Context, d Deps) appModel {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := appModel{
		ctx:      ctx,
		logger:   logger,
		now:      time.Now,
		session:  d.Session,
		auth:     d.Auth,
		dramas:   d.Dramas,
		contacts: d.Contacts,
		sms:      d.SMS,
		recorder: d.Recorder,
		orch: action.New(nil,
			action.WithRecorder(d.Recorder, d.Session.Identity),
			action.WithLogger(logger),
		),

		loginForm:     newCredentialsForm("Sign in"),
		dramaList:     newList(nil),
		contactList:   newList(nil),
		dramaSearch:   newInput("Search dramas or SMS text"),
		contactSearch: newInput("Search name or mobile"),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:          viewport.New(0, 0),
	}
	m.loader = dashboard.Loader{
		Dramas:   d.Dramas,
		Contacts: d.Contacts,
		IsAdmin:  d.Session.HasAdminRole,
	}
	m.screen = screenLogin
	if m.session.IsAuthenticated() {
		m.screen = screenOverview
		m.loading = true
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{toastTick()}
	if m.screen != screenLogin {
		cmds = append(cmds, m.spinner.Tick, m.load())
	}
	return tea.Batch(cmds...)
}

func (m appModel) busy() bool {
	return m.inflight > 0 || m.loading || m.loggingIn
}

// sections lists the screens the signed-in role may open, in tab order.
func (m appModel) sections() []screen {
	if m.session.HasAdminRole() {
		return []screen{screenOverview, screenDramas, screenContacts, screenSubAdmins}
	}
	return []screen{screenOverview, screenDramas}
}

func (m appModel) canOpen(s screen) bool {
	for _, x := range m.sections() {
		if x == s {
			return true
		}
	}
	return false
}

func (m appModel) filteredDramas() []model.Drama {
	return view.FilterEntities(m.dramas.Snapshot(), m.dramaSearch.Value(), view.DramaFields)
}

func (m appModel) filteredContacts() []model.Contact {
	return view.FilterEntities(m.contacts.Snapshot(), m.contactSearch.Value(), view.ContactFields)
}

// refreshLists rebuilds list items and the overview from the repositories'
// snapshots. It never issues requests.
func (m *appModel) refreshLists() {
	now := m.now()
	m.dramaList.SetItems(dramaItems(m.filteredDramas(), now))
	var contacts []model.Contact
	if m.session.HasAdminRole() {
		contacts = m.contacts.Snapshot()
		m.contactList.SetItems(contactItems(m.filteredContacts()))
	}
	if m.loaded {
		m.overview = view.BuildOverview(m.dramas.Snapshot(), contacts, now)
	}
}

func (m appModel) selectedDrama() (model.Drama, bool) {
	it, ok := m.dramaList.SelectedItem().(dramaItem)
	if !ok {
		return model.Drama{}, false
	}
	return it.row.Drama, true
}

func (m appModel) selectedContact() (model.Contact, bool) {
	it, ok := m.contactList.SelectedItem().(contactItem)
	if !ok {
		return model.Contact{}, false
	}
	return it.contact, true
}

// resetData forgets everything loaded for the previous session.
func (m *appModel) resetData() {
	m.overview = view.Overview{}
	m.loaded = false
	m.loading = false
	// A pending prompt holds its control in Confirming; release it so the
	// row can be armed again after the next sign-in.
	if m.confirm != nil {
		_ = m.orch.Decline(m.confirm.control)
	}
	m.modal = modalNone
	m.confirm = nil
	m.formControl = ""
	m.searching = false
	m.dramaSearch.SetValue("")
	m.contactSearch.SetValue("")
	m.dramaList.SetItems(nil)
	m.contactList.SetItems(nil)
}

func (m *appModel) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	w := contentWidth(m.width)
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	m.dramaList.SetSize(w, h)
	m.contactList.SetSize(w, h)
	m.dramaSearch.Width = w - 6
	m.contactSearch.Width = w - 6
	m.loginForm.setWidth(modalBodyWidth(m.width))
	m.editForm.setWidth(modalBodyWidth(m.width))
	m.help.Width = modalBodyWidth(m.width)
	m.help.Height = max(5, m.height-10)
}
