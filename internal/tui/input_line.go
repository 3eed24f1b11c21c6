package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a single-line input on a filled background, bodyW columns
// wide. prefix (e.g. "/" for search) is shown before the input and highlighted while
// focused.
func renderInputLine(bodyW int, prefix, inputView string, focused bool) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(inputView)

	lead := " "
	if prefix != "" {
		st := styleMuted()
		if focused {
			st = styleAccent()
		}
		lead = " " + st.Render(prefix) + " "
	}

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		lead+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Truncate(line, bodyW, "…")
	}
	return line
}
