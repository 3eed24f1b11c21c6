package tui

import (
	"strings"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a vertical stack of single-line inputs, optionally followed by a
// multi-line SMS area. Focus moves with tab/shift+tab.
type form struct {
	title  string
	editID string

	labels []string
	inputs []textinput.Model

	hasArea   bool
	areaLabel string
	area      textarea.Model

	focus int
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func newDramaForm(d *model.Drama) form {
	f := form{title: "Add Drama"}
	name := newInput("Drama name")
	date := newInput("YYYY-MM-DD")
	date.CharLimit = 10
	f.labels = []string{"Name", "Display date"}
	f.inputs = []textinput.Model{name, date}

	f.hasArea = true
	f.areaLabel = "SMS message"
	f.area = textarea.New()
	f.area.Placeholder = "Message sent to every contact"
	f.area.ShowLineNumbers = false
	f.area.CharLimit = view.SMSMaxChars
	f.area.SetHeight(4)
	f.area.Cursor.SetMode(cursor.CursorStatic)

	if d != nil {
		f.title = "Edit Drama"
		f.editID = d.ID
		f.inputs[0].SetValue(d.DramaName)
		f.inputs[1].SetValue(d.DisplayDate)
		f.area.SetValue(d.CustomSMS)
	}
	f.setFocus(0)
	return f
}

func newContactForm(c *model.Contact) form {
	f := form{title: "Add Contact"}
	f.labels = []string{"Name", "Mobile number"}
	f.inputs = []textinput.Model{newInput("Full name"), newInput("01XXXXXXXXX")}
	if c != nil {
		f.title = "Edit Contact"
		f.editID = c.ID
		f.inputs[0].SetValue(c.Name)
		f.inputs[1].SetValue(c.MobileNumber)
	}
	f.setFocus(0)
	return f
}

func newCredentialsForm(title string) form {
	f := form{title: title}
	pw := newInput("Password")
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	f.labels = []string{"Email", "Password"}
	f.inputs = []textinput.Model{newInput("you@example.com"), pw}
	f.setFocus(0)
	return f
}

func (f *form) fieldCount() int {
	n := len(f.inputs)
	if f.hasArea {
		n++
	}
	return n
}

func (f *form) setFocus(i int) tea.Cmd {
	n := f.fieldCount()
	if n == 0 {
		return nil
	}
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	if f.hasArea {
		if f.focus == len(f.inputs) {
			cmd = f.area.Focus()
		} else {
			f.area.Blur()
		}
	}
	return cmd
}

func (f *form) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// lastFocused reports whether enter on the current field should submit.
func (f *form) lastFocused() bool { return f.focus == f.fieldCount()-1 }

func (f *form) update(msg tea.Msg) tea.Cmd {
	if f.hasArea && f.focus == len(f.inputs) {
		var cmd tea.Cmd
		f.area, cmd = f.area.Update(msg)
		return cmd
	}
	if f.focus < len(f.inputs) {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return cmd
	}
	return nil
}

func (f *form) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w - 3
	}
	if f.hasArea {
		f.area.SetWidth(w)
	}
}

func (f form) value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

func (f form) dramaInput() model.DramaInput {
	return model.DramaInput{
		DramaName:   f.value(0),
		DisplayDate: f.value(1),
		CustomSMS:   f.area.Value(),
	}
}

func (f form) contactInput() model.ContactInput {
	return model.ContactInput{Name: f.value(0), MobileNumber: f.value(1)}
}

func (f form) credentials() model.Credentials {
	return model.Credentials{Email: f.value(0), Password: f.value(1)}
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	if f.hasArea {
		f.area.SetValue("")
	}
	f.setFocus(0)
}

func (f form) view(bodyW int) string {
	label := lipgloss.NewStyle().Bold(true)
	var b strings.Builder
	for i, in := range f.inputs {
		l := label
		if i == f.focus {
			l = l.Foreground(colorAccent)
		}
		b.WriteString(l.Render(f.labels[i]))
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, "", in.View(), i == f.focus))
		b.WriteString("\n\n")
	}
	if f.hasArea {
		l := label
		if f.focus == len(f.inputs) {
			l = l.Foreground(colorAccent)
		}
		b.WriteString(l.Render(f.areaLabel))
		b.WriteString("\n")
		b.WriteString(f.area.View())
		b.WriteString("\n")
		b.WriteString(renderSMSCounter(bodyW, f.area.Value()))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSMSCounter(bodyW int, text string) string {
	c := view.SMSCounter(text)
	st := styleMuted()
	switch {
	case c.Over:
		st = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case c.Warn:
		st = lipgloss.NewStyle().Foreground(colorWarning)
	}
	return lipgloss.PlaceHorizontal(bodyW, lipgloss.Right, st.Render(c.String()))
}
