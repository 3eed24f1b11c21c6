package tui

import (
	"strings"

	"shobdo-cli/internal/action"
	"shobdo-cli/internal/api"
	"shobdo-cli/internal/docs"
	"shobdo-cli/internal/model"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case toastTickMsg:
		m.expireToasts()
		return m, toastTick()

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionExpiredMsg:
		if m.screen == screenLogin {
			return m, nil
		}
		m.resetData()
		m.screen = screenLogin
		m.loginForm.reset()
		m.pushToast(action.LevelWarning, "Session expired. Please sign in again.")
		return m, nil

	case loginDoneMsg:
		m.loggingIn = false
		creds := m.loginForm.credentials()
		m.record("auth.login", strings.TrimSpace(creds.Email), msg.err)
		if msg.err != nil {
			m.pushToast(action.LevelError, msg.err.Error())
			return m, nil
		}
		m.loginForm.reset()
		m.screen = screenOverview
		m.pushToast(action.LevelSuccess, "Signed in as "+m.session.Identity())
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load())

	case overviewLoadedMsg:
		m.loading = false
		if m.screen == screenLogin {
			return m, nil
		}
		if msg.err != nil {
			if !api.IsUnauthorized(msg.err) {
				m.pushToast(action.LevelError, msg.err.Error())
			}
			return m, nil
		}
		m.overview = msg.overview
		m.loaded = true
		m.refreshLists()
		return m, nil

	case actionDoneMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		m.pushNotes(msg.res.Notes)
		if msg.res.Close && m.formControl == msg.control && m.modal != modalNone {
			m.modal = modalNone
			m.formControl = ""
		}
		// Results landing after a session expiry must not refill the lists
		// behind the sign-in screen.
		if m.screen != screenLogin {
			m.refreshLists()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		switch m.modal {
		case modalConfirm:
			return m.updateConfirm(msg)
		case modalDramaForm, modalContactForm, modalSubAdminForm:
			return m.updateForm(msg)
		case modalHelp:
			return m.updateHelp(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		return m, m.loginForm.next()
	case "shift+tab", "up":
		return m, m.loginForm.prev()
	case "enter", "ctrl+s":
		if msg.String() == "enter" && !m.loginForm.lastFocused() {
			return m, m.loginForm.next()
		}
		creds := m.loginForm.credentials()
		if err := action.ValidateCredentials(&creds); err != nil {
			m.pushToast(action.LevelError, err.Error())
			return m, nil
		}
		m.loggingIn = true
		return m, tea.Batch(m.spinner.Tick, loginCmd(m.ctx, m.auth, creds))
	}
	return m, m.loginForm.update(msg)
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	admin := m.session.HasAdminRole()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		md, _ := docs.Get("keys")
		m.help.SetContent(renderMarkdown(md, max(20, m.help.Width)))
		m.help.GotoTop()
		m.modal = modalHelp
		return m, nil
	case "1", "2", "3", "4":
		s := m.sectionAt(int(msg.String()[0] - '1'))
		if m.canOpen(s) {
			m.screen = s
		}
		return m, nil
	case "tab":
		m.screen = m.cycleSection(1)
		return m, nil
	case "shift+tab":
		m.screen = m.cycleSection(-1)
		return m, nil
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load())
	case "L":
		m.record("auth.logout", m.session.Identity(), nil)
		if err := m.auth.Logout(); err != nil {
			m.pushToast(action.LevelError, err.Error())
			return m, nil
		}
		m.resetData()
		m.screen = screenLogin
		m.pushToast(action.LevelInfo, "Signed out.")
		return m, nil
	}

	switch m.screen {
	case screenDramas:
		return m.updateDramas(msg, admin)
	case screenContacts:
		return m.updateContacts(msg)
	case screenSubAdmins:
		if msg.String() == "a" {
			m.editForm = newCredentialsForm("Create Sub-admin")
			m.editForm.setWidth(modalBodyWidth(m.width))
			m.formControl = action.ControlSubAdmin
			m.modal = modalSubAdminForm
		}
	}
	return m, nil
}

func (m appModel) updateDramas(msg tea.KeyMsg, admin bool) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.dramaSearch.Focus()
	case "a":
		if !admin {
			m.pushToast(action.LevelWarning, "Only admins can add dramas.")
			return m, nil
		}
		m.openDramaForm(nil)
		return m, nil
	case "e", "enter":
		if d, ok := m.selectedDrama(); ok {
			m.openDramaForm(&d)
		}
		return m, nil
	case "d":
		d, ok := m.selectedDrama()
		if !ok {
			return m, nil
		}
		if !admin {
			m.pushToast(action.LevelWarning, "Only admins can delete dramas.")
			return m, nil
		}
		mm, cmd := m.startAction(action.DramaRowControl("delete", d.ID), action.DeleteDrama(m.dramas, d))
		return mm, cmd
	case "s":
		d, ok := m.selectedDrama()
		if !ok {
			return m, nil
		}
		if !admin || m.sms == nil {
			m.pushToast(action.LevelWarning, "Only admins can send SMS.")
			return m, nil
		}
		mm, cmd := m.startAction(action.DramaRowControl("sms", d.ID), action.SendSMS(m.sms, d))
		return mm, cmd
	}
	var cmd tea.Cmd
	m.dramaList, cmd = m.dramaList.Update(msg)
	return m, cmd
}

func (m appModel) updateContacts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.contactSearch.Focus()
	case "a":
		m.openContactForm(nil)
		return m, nil
	case "e", "enter":
		if c, ok := m.selectedContact(); ok {
			m.openContactForm(&c)
		}
		return m, nil
	case "d":
		c, ok := m.selectedContact()
		if !ok {
			return m, nil
		}
		mm, cmd := m.startAction(action.ContactRowControl("delete", c.ID), action.DeleteContact(m.contacts, c))
		return mm, cmd
	}
	var cmd tea.Cmd
	m.contactList, cmd = m.contactList.Update(msg)
	return m, cmd
}

func (m *appModel) openDramaForm(d *model.Drama) {
	m.editForm = newDramaForm(d)
	m.editForm.setWidth(modalBodyWidth(m.width))
	m.formControl = action.ControlDramaCreate
	if d != nil {
		m.formControl = action.DramaRowControl("update", d.ID)
	}
	m.modal = modalDramaForm
}

func (m *appModel) openContactForm(c *model.Contact) {
	m.editForm = newContactForm(c)
	m.editForm.setWidth(modalBodyWidth(m.width))
	m.formControl = action.ControlContactCreate
	if c != nil {
		m.formControl = action.ContactRowControl("update", c.ID)
	}
	m.modal = modalContactForm
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := &m.dramaSearch
	if m.screen == screenContacts {
		in = &m.contactSearch
	}
	switch msg.String() {
	case "enter":
		m.searching = false
		in.Blur()
		return m, nil
	case "esc":
		m.searching = false
		in.Blur()
		in.SetValue("")
		m.refreshLists()
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	m.refreshLists()
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The form stays open (and keeps its input) while its submission is in flight.
	if m.orch.State(m.formControl) == action.Submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.formControl = ""
		return m, nil
	case "tab":
		return m, m.editForm.next()
	case "shift+tab":
		return m, m.editForm.prev()
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.editForm.hasArea && m.editForm.focus == len(m.editForm.inputs) {
			break
		}
		if m.editForm.lastFocused() {
			return m.submitForm()
		}
		return m, m.editForm.next()
	}
	return m, m.editForm.update(msg)
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	f := m.editForm
	var a action.Action
	switch m.modal {
	case modalDramaForm:
		if f.editID == "" {
			a = action.CreateDrama(m.dramas, f.dramaInput())
		} else {
			a = action.UpdateDrama(m.dramas, f.editID, f.dramaInput())
		}
	case modalContactForm:
		if f.editID == "" {
			a = action.CreateContact(m.contacts, f.contactInput())
		} else {
			a = action.UpdateContact(m.contacts, f.editID, f.contactInput())
		}
	case modalSubAdminForm:
		a = action.CreateSubAdmin(m.auth, f.credentials())
	default:
		return m, nil
	}
	mm, cmd := m.startAction(m.formControl, a)
	return mm, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.modal = modalNone
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.acceptConfirm()
	case "n", "esc", "q":
		return m.declineConfirm()
	case "enter":
		if m.confirm.focus == confirmFocusConfirm {
			return m.acceptConfirm()
		}
		return m.declineConfirm()
	}
	return m, nil
}

func (m appModel) acceptConfirm() (tea.Model, tea.Cmd) {
	p := m.confirm
	m.confirm = nil
	m.modal = modalNone
	if err := m.orch.Confirm(p.control); err != nil {
		m.logger.Warn("confirm", "control", p.control, "err", err)
		return m, nil
	}
	mm, cmd := m.submit(p.control, p.action)
	return mm, cmd
}

func (m appModel) declineConfirm() (tea.Model, tea.Cmd) {
	if err := m.orch.Decline(m.confirm.control); err != nil {
		m.logger.Warn("decline", "control", m.confirm.control, "err", err)
	}
	m.confirm = nil
	m.modal = modalNone
	return m, nil
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m appModel) sectionAt(i int) screen {
	all := []screen{screenOverview, screenDramas, screenContacts, screenSubAdmins}
	if i < 0 || i >= len(all) {
		return screenLogin
	}
	return all[i]
}

func (m appModel) cycleSection(delta int) screen {
	secs := m.sections()
	cur := 0
	for i, s := range secs {
		if s == m.screen {
			cur = i
		}
	}
	n := len(secs)
	return secs[((cur+delta)%n+n)%n]
}
