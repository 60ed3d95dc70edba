package ui

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content.
func HelpBindings(mode Mode) help.KeyMap {
	switch mode {
	case ModeAdd, ModeEdit:
		return FormKeyMap()
	case ModeConfirmDelete:
		return ConfirmKeyMap()
	default:
		return BrowseKeyMap()
	}
}
