package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pocatalin/phone-agenda/internal/contacts"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// statusBarHeight is the number of lines reserved for the status line.
const statusBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the contact manager.
// It manages a two-pane layout with mode-based routing and focus management.
type Model struct {
	store   ContactStore
	changes chan contacts.List
	cancel  func()

	list   contacts.List
	cursor int

	mode   Mode
	focus  Focus
	width  int
	height int
	help   help.Model

	form          formState
	editing       string // Name of the contact being edited.
	confirmTarget string // Name of the contact awaiting delete confirmation.
	status        string
}

// NewModel creates a Model in browse mode over store and subscribes to its
// change notifications.
func NewModel(store ContactStore) Model {
	changes := make(chan contacts.List, 1)
	cancel := store.Subscribe(func(l contacts.List) {
		// Keep only the latest snapshot so the store never blocks.
		select {
		case <-changes:
		default:
		}
		changes <- l
	})
	return Model{
		store:   store,
		changes: changes,
		cancel:  cancel,
		list:    store.Contacts(),
		mode:    ModeBrowse,
		focus:   PaneLeft,
		help:    help.New(),
	}
}

// Close unsubscribes the model from store notifications.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Init starts listening for store changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// waitForChange returns a tea.Cmd that blocks until the store publishes a
// new snapshot and wraps it in a ContactsChangedMsg.
func waitForChange(ch <-chan contacts.List) tea.Cmd {
	return func() tea.Msg {
		return ContactsChangedMsg{Contacts: <-ch}
	}
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ContactsChangedMsg:
		m.setList(msg.Contacts)
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeAdd, ModeEdit:
			return m.handleFormKey(msg)
		case ModeConfirmDelete:
			return m.handleConfirmKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}

	return m, nil
}

// setList installs a new snapshot and keeps the cursor in range.
func (m *Model) setList(l contacts.List) {
	m.list = l
	if m.cursor >= len(m.list) {
		m.cursor = len(m.list) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the contact under the cursor.
func (m Model) selected() (contacts.Contact, bool) {
	if len(m.list) == 0 || m.cursor >= len(m.list) {
		return contacts.Contact{}, false
	}
	return m.list[m.cursor], true
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}

	case "up", "k":
		if len(m.list) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.list) - 1
			}
		}

	case "down", "j":
		if len(m.list) > 0 {
			m.cursor++
			if m.cursor >= len(m.list) {
				m.cursor = 0
			}
		}

	case "a":
		var cmd tea.Cmd
		m.form, cmd = newForm(contacts.Contact{}, true)
		m.mode = ModeAdd
		m.focus = PaneRight
		return m, cmd

	case "e", "enter":
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		var cmd tea.Cmd
		m.form, cmd = newForm(c, false)
		m.editing = c.Name
		m.mode = ModeEdit
		m.focus = PaneRight
		return m, cmd

	case "d":
		c, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmTarget = c.Name
		m.mode = ModeConfirmDelete
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		return m.backToBrowse(""), nil
	case "tab", "down":
		m.form, cmd = m.form.move(1)
		return m, cmd
	case "shift+tab", "up":
		m.form, cmd = m.form.move(-1)
		return m, cmd
	case "enter":
		if m.mode == ModeAdd {
			return m.submitAdd()
		}
		return m.submitEdit()
	}

	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// submitAdd adds or merges the form contact. On invalid input the form
// stays open with its values and the email error flag set.
func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	c := m.form.contact()
	existed := m.list.Index(c.Name) >= 0

	l, err := m.store.AddOrMerge(c)
	if err != nil {
		m.form.emailErr = true
		return m, nil
	}

	m.setList(l)
	m.cursor = max(m.list.Index(c.Name), 0)
	if existed {
		return m.backToBrowse("Contact updated."), nil
	}
	return m.backToBrowse("Contact added."), nil
}

// submitEdit patches the edited contact with the fields changed in the form.
func (m Model) submitEdit() (tea.Model, tea.Cmd) {
	p := m.form.changes()

	l, err := m.store.Update(m.editing, p)
	switch {
	case errors.Is(err, contacts.ErrDuplicateName):
		m.form.err = fmt.Sprintf("Another contact is already named %q.", *p.Name)
		return m, nil
	case err != nil:
		// The contact vanished; nothing to update.
		m.setList(l)
		return m.backToBrowse(""), nil
	}

	m.setList(l)
	name := m.editing
	if p.Name != nil && *p.Name != "" {
		name = *p.Name
	}
	m.cursor = max(m.list.Index(name), 0)
	return m.backToBrowse("Contact updated."), nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		l, err := m.store.Delete(m.confirmTarget)
		m.setList(l)
		if err != nil {
			return m.backToBrowse(""), nil
		}
		return m.backToBrowse("Contact deleted."), nil
	case "n", "esc":
		return m.backToBrowse(""), nil
	}
	return m, nil
}

// backToBrowse resets transient state and returns to browse mode.
func (m Model) backToBrowse(status string) Model {
	m.mode = ModeBrowse
	m.focus = PaneLeft
	m.form = formState{}
	m.editing = ""
	m.confirmTarget = ""
	m.status = status
	return m
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the status line, and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - statusBarHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with status line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.viewLeft(contentHeight))
	rightPane := rightStyle.Render(m.viewRight())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	statusLine := statusStyle.Render(m.status)
	helpView := m.help.View(HelpBindings(m.mode))

	return lipgloss.JoinVertical(lipgloss.Left, panes, statusLine, helpView)
}

// viewLeft renders the contact list, scrolled to keep the cursor visible.
func (m Model) viewLeft(height int) string {
	if len(m.list) == 0 {
		return labelStyle.Render("No contacts")
	}

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(start+height, len(m.list))

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteString("\n")
		}
		name := m.list[i].Name
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(CursorMarker + name))
		} else {
			b.WriteString("  " + name)
		}
	}
	return b.String()
}

// viewRight renders the right pane content based on mode.
func (m Model) viewRight() string {
	switch m.mode {
	case ModeAdd, ModeEdit:
		return m.form.View()
	case ModeConfirmDelete:
		return viewConfirm(m.confirmTarget)
	default:
		return m.viewDetail()
	}
}

// viewDetail renders the selected contact.
func (m Model) viewDetail() string {
	c, ok := m.selected()
	if !ok {
		return "No contacts yet.\n\nPress a to add one."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name) + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Phone:"), orDash(c.Phone))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Email:"), orDash(c.Email))
	return b.String()
}

// viewConfirm renders the delete confirmation prompt.
func viewConfirm(name string) string {
	return fmt.Sprintf("Delete %s?\n\n  [y] Delete   [n] Keep", titleStyle.Render(name))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
