package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/pocatalin/phone-agenda/internal/config"
	"github.com/pocatalin/phone-agenda/internal/contacts"
	"github.com/pocatalin/phone-agenda/internal/kv"
	"github.com/pocatalin/phone-agenda/internal/logging"
	"github.com/pocatalin/phone-agenda/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for agenda.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Add     AddCmd           `cmd:"" help:"Add a contact, or update the email of an existing one."`
	Update  UpdateCmd        `cmd:"" help:"Update fields of an existing contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	List    ListCmd          `cmd:"" help:"List contacts."`
	UI      UICmd            `cmd:"" name:"ui" help:"Open the interactive contact manager."`
}

// Messages printed by the one-shot commands.
const (
	msgAdded    = "Contact added."
	msgUpdated  = "Contact updated."
	msgDeleted  = "Contact deleted."
	msgNotFound = "Contact not found."
	msgInvalid  = "Invalid input. Contact not added."
)

// session bundles the loaded config, logger, backend and store that every
// command works against.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	backend  kv.Store
	store    *contacts.Store
	stopSave func()
}

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/agenda/config.yaml"),
		".agenda/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession loads config, opens the configured backend and loads the
// persisted contacts. Unreadable state is logged and replaced by an empty
// list. A TUI session saves after every mutation; one-shot commands save
// explicitly so a failed write reaches the exit code.
func openSession(forTUI bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	newLogger := logging.New
	if forTUI {
		newLogger = logging.ForTUI
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	backend, err := kv.DefaultRegistry().Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	store := contacts.NewStore(backend,
		contacts.WithKey(cfg.Storage.Key),
		contacts.WithLogger(logger),
	)
	if _, err := store.Load(); err != nil && !errors.Is(err, contacts.ErrCorruptState) {
		_ = backend.Close()
		_ = logger.Sync()
		return nil, err
	}

	stopSave := func() {}
	if forTUI {
		stopSave = store.AutoSave()
	}
	return &session{
		cfg:      cfg,
		log:      logger,
		backend:  backend,
		store:    store,
		stopSave: stopSave,
	}, nil
}

// Close stops auto-saving and releases the backend.
func (s *session) Close() {
	s.stopSave()
	if err := s.backend.Close(); err != nil {
		s.log.Warn("closing storage backend", zap.Error(err))
	}
	_ = s.log.Sync()
}

// isTTY reports whether stdout is a terminal.
func isTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// AddCmd adds a contact or merges the email into an existing one.
type AddCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `help:"Phone number (digits and + only)."`
	Email string `help:"Email address."`
}

// Run executes the add command.
func (a *AddCmd) Run() error {
	sess, err := openSession(false)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer sess.Close()
	return a.run(os.Stdout, sess.store)
}

// run performs the add against store, enabling testable wiring.
func (a *AddCmd) run(w io.Writer, store *contacts.Store) error {
	if !contacts.ValidPhone(a.Phone) {
		_, _ = fmt.Fprintln(w, msgInvalid)
		return fmt.Errorf("add: phone %q: %w", a.Phone, contacts.ErrInvalidInput)
	}

	_, existed := store.Find(a.Name)
	if _, err := store.AddOrMerge(contacts.Contact{Name: a.Name, Phone: a.Phone, Email: a.Email}); err != nil {
		_, _ = fmt.Fprintln(w, msgInvalid)
		return fmt.Errorf("add: %w", err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("add: %w", err)
	}

	if existed {
		_, _ = fmt.Fprintln(w, msgUpdated)
	} else {
		_, _ = fmt.Fprintln(w, msgAdded)
	}
	return nil
}

// UpdateCmd patches the given fields of an existing contact.
type UpdateCmd struct {
	Contact string  `arg:"" help:"Name of the contact to update."`
	Name    *string `help:"New name."`
	Phone   *string `help:"New phone number (digits and + only)."`
	Email   *string `help:"New email address."`
}

// Run executes the update command.
func (u *UpdateCmd) Run() error {
	sess, err := openSession(false)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer sess.Close()
	return u.run(os.Stdout, sess.store)
}

// run performs the update against store, enabling testable wiring.
func (u *UpdateCmd) run(w io.Writer, store *contacts.Store) error {
	if u.Name != nil && *u.Name == "" {
		return fmt.Errorf("update: name cannot be empty: %w", contacts.ErrInvalidInput)
	}
	if u.Phone != nil && !contacts.ValidPhone(*u.Phone) {
		return fmt.Errorf("update: phone %q: %w", *u.Phone, contacts.ErrInvalidInput)
	}

	_, err := store.Update(u.Contact, contacts.Patch{Name: u.Name, Phone: u.Phone, Email: u.Email})
	switch {
	case errors.Is(err, contacts.ErrNotFound):
		_, _ = fmt.Fprintln(w, msgNotFound)
		return nil
	case err != nil:
		return fmt.Errorf("update: %w", err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintln(w, msgUpdated)
	return nil
}

// DeleteCmd removes a contact by name.
type DeleteCmd struct {
	Name string `arg:"" help:"Name of the contact to delete."`
}

// Run executes the delete command.
func (d *DeleteCmd) Run() error {
	sess, err := openSession(false)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer sess.Close()
	return d.run(os.Stdout, sess.store)
}

// run performs the delete against store. A missing contact is reported
// but is not an error.
func (d *DeleteCmd) run(w io.Writer, store *contacts.Store) error {
	if _, err := store.Delete(d.Name); err != nil {
		if errors.Is(err, contacts.ErrNotFound) {
			_, _ = fmt.Fprintln(w, msgNotFound)
			return nil
		}
		return fmt.Errorf("delete: %w", err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	_, _ = fmt.Fprintln(w, msgDeleted)
	return nil
}

// ListCmd prints every contact in list order.
type ListCmd struct {
	JSON bool `name:"json" help:"Print contacts in their stored JSON form."`
}

// Run executes the list command.
func (l *ListCmd) Run() error {
	sess, err := openSession(false)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer sess.Close()
	return l.run(os.Stdout, sess.store, isTTY())
}

// run writes the contacts of store to w. A terminal gets a styled table.
func (l *ListCmd) run(w io.Writer, store *contacts.Store, tty bool) error {
	list := store.Contacts()
	if l.JSON {
		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		_, _ = fmt.Fprintln(w, string(data))
		return nil
	}
	_, _ = io.WriteString(w, ui.RenderList(list, tty))
	return nil
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// UICmd opens the interactive contact manager.
type UICmd struct{}

// Run builds real dependencies and launches the TUI.
func (c *UICmd) Run() error {
	if !isTTY() {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}

	sess, err := openSession(true)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer sess.Close()

	m := ui.NewModel(sess.store)
	defer m.Close()

	var opts []tea.ProgramOption
	if sess.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return c.run(true, tea.NewProgram(m, opts...))
}

// run executes the tea program, enabling testable wiring.
func (c *UICmd) run(tty bool, prog teaRunner) error {
	if !tty {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

const (
	exitSuccess = 0
	exitInvalid = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, contacts.ErrInvalidInput) || errors.Is(err, contacts.ErrDuplicateName) {
		return exitInvalid
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("agenda"),
		kong.Description("A local phone agenda."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
