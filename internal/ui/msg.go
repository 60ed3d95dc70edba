// Package ui implements the interactive two-pane contact manager TUI and the
// list rendering shared with the command-line output.
package ui

import "github.com/pocatalin/phone-agenda/internal/contacts"

// Mode represents the current view mode.
type Mode int

const (
	ModeBrowse        Mode = iota // Browsing the contact list with detail pane.
	ModeAdd                       // Filling the new-contact form.
	ModeEdit                      // Editing the selected contact.
	ModeConfirmDelete             // Asking before deleting the selected contact.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Contact list has focus.
	PaneRight              // Detail or form pane has focus.
)

// ContactStore is the subset of *contacts.Store the TUI drives.
type ContactStore interface {
	Contacts() contacts.List
	AddOrMerge(c contacts.Contact) (contacts.List, error)
	Update(name string, p contacts.Patch) (contacts.List, error)
	Delete(name string) (contacts.List, error)
	Subscribe(fn contacts.Listener) (cancel func())
}

// --- tea.Msg types ---

// ContactsChangedMsg carries the list snapshot published after a mutation.
type ContactsChangedMsg struct {
	Contacts contacts.List
}
