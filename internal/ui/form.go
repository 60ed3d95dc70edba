package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pocatalin/phone-agenda/internal/contacts"
)

const (
	fieldName = iota
	fieldPhone
	fieldEmail
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Phone", "Email"}

// formState holds the three inputs of the add or edit form.
type formState struct {
	inputs     [fieldCount]textinput.Model
	focused    int
	emailErr   bool   // Set when an add is rejected; cleared on success.
	phoneHint  bool   // Set when the last phone keystroke was rejected.
	err        string // Other submit errors, e.g. a rename collision.
	newContact bool
	initial    contacts.Contact // Values as first shown, after input sanitizing.
}

// newForm returns a form pre-filled with c, focused on the name field.
func newForm(c contacts.Contact, newContact bool) (formState, tea.Cmd) {
	f := formState{newContact: newContact}
	placeholders := [fieldCount]string{"Contact Name", "Phone Number", "Email Address"}
	values := [fieldCount]string{c.Name, c.Phone, c.Email}
	if !newContact {
		placeholders = [fieldCount]string{"New Name", "New Phone Number", "New Email Address"}
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 0
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	f.initial = f.contact()
	cmd := f.inputs[fieldName].Focus()
	return f, cmd
}

// contact returns the values currently entered.
func (f formState) contact() contacts.Contact {
	return contacts.Contact{
		Name:  f.inputs[fieldName].Value(),
		Phone: f.inputs[fieldPhone].Value(),
		Email: f.inputs[fieldEmail].Value(),
	}
}

// changes returns a patch of the fields the user edited. Untouched fields
// are left out so values the input cannot display are never rewritten.
func (f formState) changes() contacts.Patch {
	return contacts.Changes(f.initial, f.contact())
}

// move shifts focus by delta, wrapping around.
func (f formState) move(delta int) (formState, tea.Cmd) {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + delta + fieldCount) % fieldCount
	cmd := f.inputs[f.focused].Focus()
	return f, cmd
}

// Update forwards a key to the focused input. A phone keystroke that would
// leave anything but digits and '+' is dropped.
func (f formState) Update(msg tea.KeyMsg) (formState, tea.Cmd) {
	before := f.inputs[f.focused].Value()

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)

	if f.focused == fieldPhone {
		f.phoneHint = false
		if !contacts.ValidPhone(f.inputs[fieldPhone].Value()) {
			f.inputs[fieldPhone].SetValue(before)
			f.phoneHint = true
		}
	}
	return f, cmd
}

// View renders the form.
func (f formState) View() string {
	var b strings.Builder

	if f.newContact {
		b.WriteString(titleStyle.Render("Add Contact"))
	} else {
		b.WriteString(titleStyle.Render("Update Contact"))
	}
	b.WriteString("\n\n")

	for i := range f.inputs {
		label := fieldLabels[i]
		if i == f.focused {
			label = selectedStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label + "\n  " + f.inputs[i].View() + "\n")

		switch {
		case i == fieldPhone && f.phoneHint:
			b.WriteString(errorStyle.Render("  Phone accepts digits and + only.") + "\n")
		case i == fieldEmail && f.emailErr:
			b.WriteString(errorStyle.Render("  Invalid email format.") + "\n")
		}
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err) + "\n")
	}
	return b.String()
}
