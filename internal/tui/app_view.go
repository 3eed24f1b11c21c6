package tui

import (
	"fmt"
	"strings"

	"shobdo-cli/internal/view"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var body string
	switch {
	case m.screen == screenLogin:
		body = m.viewLogin()
	case m.modal != modalNone:
		body = placeCenter(m.width, m.height-len(m.toasts), m.viewModal())
	default:
		body = m.viewMain()
	}
	if t := m.renderToasts(m.width); t != "" {
		body = lipgloss.JoinVertical(lipgloss.Right, body, t)
	}
	return normalizePane(body, m.width, m.height)
}

func (m appModel) viewLogin() string {
	title := styleAccent().Render("Shobdo") + styleMuted().Render("  show notifications")
	hint := "enter: sign in   tab: next field   ctrl+c: quit"
	if m.loggingIn {
		hint = m.spinner.View() + " Signing in..."
	}
	content := strings.Join([]string{
		title,
		"",
		m.loginForm.view(modalBodyWidth(m.width)),
		"",
		styleMuted().Render(hint),
	}, "\n")
	return placeCenter(m.width, m.height-len(m.toasts), renderModalBox(m.width, "Sign in", content))
}

func (m appModel) viewModal() string {
	bodyW := modalBodyWidth(m.width)
	switch m.modal {
	case modalConfirm:
		if m.confirm == nil || m.confirm.action.Confirm == nil {
			return ""
		}
		p := m.confirm.action.Confirm
		label := "Confirm"
		if p.Danger {
			label = "Delete"
		}
		return renderConfirmModal(m.width, p.Title, p.Message, label, "Cancel", m.confirm.focus, p.Danger)
	case modalDramaForm, modalContactForm, modalSubAdminForm:
		hint := "tab: next field   ctrl+s: save   esc: cancel"
		if m.inflight > 0 {
			hint = m.spinner.View() + " Saving..."
		}
		content := m.editForm.view(bodyW) + "\n\n" + styleMuted().Width(bodyW).Render(hint)
		return renderModalBox(m.width, m.editForm.title, content)
	case modalHelp:
		return renderModalBox(m.width, "Keys", m.help.View()+"\n\n"+styleMuted().Render("esc: close"))
	}
	return ""
}

func (m appModel) viewMain() string {
	w := contentWidth(m.width)
	var body string
	switch m.screen {
	case screenOverview:
		body = m.viewOverview(w)
	case screenDramas:
		body = m.viewDramas(w)
	case screenContacts:
		body = m.viewContacts(w)
	case screenSubAdmins:
		body = m.viewSubAdmins(w)
	}
	return strings.Join([]string{
		m.viewHeader(w),
		"",
		body,
		"",
		styleMuted().Render(m.footerHint()),
	}, "\n")
}

func (m appModel) viewHeader(w int) string {
	active := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	idle := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	tabs := []string{styleAccent().Render("Shobdo") + " "}
	for i, s := range m.sections() {
		label := fmt.Sprintf("%d %s", i+1, s.title())
		if s == m.screen {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, idle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	right := fmt.Sprintf("%s (%s)", m.session.Identity(), m.session.Role())
	if m.busy() {
		right = m.spinner.View() + " " + right
	}
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + styleMuted().Render(right)
}

func (m appModel) footerHint() string {
	switch m.screen {
	case screenDramas:
		if m.session.HasAdminRole() {
			return "/: search   a: add   e: edit   d: delete   s: send SMS   r: reload   ?: help   q: quit"
		}
		return "/: search   e: edit   r: reload   ?: help   q: quit"
	case screenContacts:
		return "/: search   a: add   e: edit   d: delete   r: reload   ?: help   q: quit"
	case screenSubAdmins:
		return "a: add sub-admin   ?: help   q: quit"
	default:
		return "tab: next section   r: reload   L: sign out   ?: help   q: quit"
	}
}

func (m appModel) viewOverview(w int) string {
	if !m.loaded {
		if m.loading {
			return m.spinner.View() + " Loading..."
		}
		return styleMuted().Render("Press r to load.")
	}
	ov := m.overview
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 2)
	metric := func(label string, n int) string {
		return card.Render(styleMuted().Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(fmt.Sprint(n)))
	}
	cards := []string{metric("Total dramas", ov.TotalDramas), metric("Upcoming", ov.UpcomingDramas)}
	if ov.ShowContacts {
		cards = append(cards, metric("Contacts", ov.TotalContacts))
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Upcoming shows"))
	b.WriteString("\n")
	if len(ov.Upcoming) == 0 {
		b.WriteString(renderEmpty(view.EmptyFor("upcoming", "")))
		return b.String()
	}
	for _, r := range view.DramaRows(ov.Upcoming, m.now()) {
		b.WriteString(normalizePane(dramaItem{row: r}.Title(), w, 1))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m appModel) searchLine(w int, searching bool, input string, query string) string {
	if !searching && view.NormalizeQuery(query) == "" {
		return styleMuted().Render("/ to search")
	}
	return renderInputLine(w, "/", input, searching)
}

func (m appModel) viewDramas(w int) string {
	all := m.filteredDramas()
	counts := view.CountDramas(all, m.now())
	summary := styleMuted().Render(fmt.Sprintf("%d dramas · %d upcoming", counts.Total, counts.Upcoming))
	lines := []string{
		m.searchLine(w, m.searching, m.dramaSearch.View(), m.dramaSearch.Value()),
		summary,
		"",
	}
	if len(all) == 0 {
		lines = append(lines, renderEmpty(view.EmptyFor("dramas", m.dramaSearch.Value())))
	} else {
		lines = append(lines, m.dramaList.View())
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewContacts(w int) string {
	all := m.filteredContacts()
	lines := []string{
		m.searchLine(w, m.searching, m.contactSearch.View(), m.contactSearch.Value()),
		styleMuted().Render(view.ContactCountLabel(len(all))),
		"",
	}
	if len(all) == 0 {
		lines = append(lines, renderEmpty(view.EmptyFor("contacts", m.contactSearch.Value())))
	} else {
		lines = append(lines, m.contactList.View())
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewSubAdmins(w int) string {
	text := "Sub-admins can view and edit dramas. They cannot add or delete dramas, send SMS or manage contacts."
	return lipgloss.NewStyle().Width(w).Render(text) + "\n\n" + styleMuted().Render("Press a to create a sub-admin account.")
}

func renderEmpty(e view.EmptyState) string {
	out := lipgloss.NewStyle().Bold(true).Render(e.Title)
	if e.Message != "" {
		out += "\n" + styleMuted().Render(e.Message)
	}
	return out
}
