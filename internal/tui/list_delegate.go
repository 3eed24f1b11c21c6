package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type compactItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCompactItemDelegate() compactItemDelegate {
	return compactItemDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d compactItemDelegate) Height() int                             { return 1 }
func (d compactItemDelegate) Spacing() int                            { return 0 }
func (d compactItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d compactItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	} else {
		txt = fmt.Sprint(item)
	}

	line := txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}

// newList builds a list with the chrome hidden; the app renders its own header,
// search line and footer.
func newList(items []list.Item) list.Model {
	l := list.New(items, newCompactItemDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Search is done by the app against several fields, not by list's fuzzy filter.
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetKeys("q")

	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}

type dramaItem struct {
	row view.DramaRow
}

func (i dramaItem) FilterValue() string { return i.row.Drama.DramaName }

func (i dramaItem) Title() string {
	badge := badgeStyle(i.row.Status).Render(fmt.Sprintf("%-8s", i.row.Badge))
	date := fmt.Sprintf("%-11s", i.row.Date)
	return fmt.Sprintf(" %s  %s  %s", date, badge, i.row.Drama.DramaName)
}

func dramaItems(dramas []model.Drama, now time.Time) []list.Item {
	rows := view.DramaRows(dramas, now)
	out := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, dramaItem{row: r})
	}
	return out
}

type contactItem struct {
	contact model.Contact
}

func (i contactItem) FilterValue() string { return i.contact.Name }

func (i contactItem) Title() string {
	return fmt.Sprintf(" %-28s  %s", i.contact.Name, i.contact.MobileNumber)
}

func contactItems(contacts []model.Contact) []list.Item {
	out := make([]list.Item, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactItem{contact: c})
	}
	return out
}
