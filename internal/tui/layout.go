package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	maxContentW = 100
	maxModalW   = 72
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			if width <= 1 {
				ln = xansi.Cut(ln, 0, width)
			} else {
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func contentWidth(termW int) int {
	w := termW - 4
	if w > maxContentW {
		w = maxContentW
	}
	if w < 40 {
		w = 40
	}
	return w
}

func modalWidth(termW int) int {
	w := termW - 8
	if w > maxModalW {
		w = maxModalW
	}
	if w < 36 {
		w = 36
	}
	return w
}

func modalBodyWidth(termW int) int {
	return modalWidth(termW) - 4
}

// renderModalBox draws a titled box. No nested borders: some terminals show
// background artifacts inside bordered modals.
func renderModalBox(termW int, title, content string) string {
	w := modalWidth(termW)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(w-2).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Width(w-2).
		Padding(1, 1).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// placeCenter overlays a modal in the middle of the screen.
func placeCenter(termW, termH int, s string) string {
	if termW <= 0 || termH <= 0 {
		return s
	}
	return lipgloss.Place(termW, termH, lipgloss.Center, lipgloss.Center, s)
}
