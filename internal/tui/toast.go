package tui

import (
	"strings"
	"time"

	"shobdo-cli/internal/action"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	toastAutoClearAfter = 3600 * time.Millisecond
	toastTickEvery      = 300 * time.Millisecond
	maxToasts           = 4
)

type toast struct {
	level action.Level
	text  string
	at    time.Time
}

func toastTick() tea.Cmd {
	return tea.Tick(toastTickEvery, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

func (m *appModel) pushToast(level action.Level, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	m.toasts = append(m.toasts, toast{level: level, text: text, at: m.now()})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *appModel) pushNotes(notes []action.Notification) {
	for _, n := range notes {
		m.pushToast(n.Level, n.Message)
	}
}

// expireToasts drops toasts older than toastAutoClearAfter.
func (m *appModel) expireToasts() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Sub(t.at) < toastAutoClearAfter {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m appModel) renderToasts(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		lines = append(lines, toastStyle(t.level).MaxWidth(width).Render(t.text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
