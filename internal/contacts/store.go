package contacts

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultKey is the backend key the contact list is stored under.
const DefaultKey = "contacts"

// corruptSuffix is appended to the key when an unreadable blob is set aside.
const corruptSuffix = ".corrupt"

// Backend is the key-value blob store the Store persists to.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Listener receives a snapshot of the list after each mutation.
type Listener func(List)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithKey overrides the backend key (default DefaultKey).
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Store owns the current contact list. It is not safe for concurrent use:
// callers drive it from a single goroutine.
type Store struct {
	backend   Backend
	key       string
	log       *zap.Logger
	list      List
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty Store persisting through backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		key:       DefaultKey,
		log:       zap.NewNop(),
		list:      List{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Contacts returns a snapshot of the current list.
func (s *Store) Contacts() List {
	return s.list.Clone()
}

// Find returns the contact named name.
func (s *Store) Find(name string) (Contact, bool) {
	i := s.list.Index(name)
	if i < 0 {
		return Contact{}, false
	}
	return s.list[i], true
}

// AddOrMerge adds c, or merges its email into the existing contact of the
// same name. The list is unchanged on ErrInvalidInput.
func (s *Store) AddOrMerge(c Contact) (List, error) {
	next, merged, err := s.list.AddOrMerge(c)
	if err != nil {
		s.log.Info("invalid input, contact not added", zap.String("name", c.Name), zap.Error(err))
		return s.Contacts(), err
	}
	if merged {
		s.log.Info("contact updated", zap.String("name", c.Name))
	} else {
		s.log.Info("contact added", zap.String("name", c.Name))
	}
	s.commit(next)
	return s.Contacts(), nil
}

// Delete removes the contact named name. The list is unchanged on ErrNotFound.
func (s *Store) Delete(name string) (List, error) {
	next, err := s.list.Delete(name)
	if err != nil {
		s.log.Info("contact not found", zap.String("name", name))
		return s.Contacts(), err
	}
	s.log.Info("contact deleted", zap.String("name", name))
	s.commit(next)
	return s.Contacts(), nil
}

// Update applies p to the contact named name without validating the new
// values. A missing contact leaves the list as is and returns ErrNotFound,
// which callers may treat as a no-op.
func (s *Store) Update(name string, p Patch) (List, error) {
	next, err := s.list.Update(name, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Info("contact not found", zap.String("name", name))
		} else {
			s.log.Warn("contact not updated", zap.String("name", name), zap.Error(err))
		}
		return s.Contacts(), err
	}
	s.log.Info("contact updated", zap.String("name", name))
	s.commit(next)
	return s.Contacts(), nil
}

// Load replaces the list with the persisted one. A missing or empty blob
// yields an empty list. An undecodable blob is copied aside under
// "<key>.corrupt", the list is reset to empty, and ErrCorruptState is
// returned. Listeners are not notified.
func (s *Store) Load() (List, error) {
	raw, found, err := s.backend.Get(s.key)
	if err != nil {
		return s.Contacts(), fmt.Errorf("contacts: loading %q: %w", s.key, err)
	}
	if !found || raw == "" {
		s.list = List{}
		return s.Contacts(), nil
	}

	var loaded List
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.list = List{}
		s.log.Warn("persisted contacts unreadable, starting empty",
			zap.String("key", s.key), zap.Error(err))
		if serr := s.backend.Set(s.key+corruptSuffix, raw); serr != nil {
			s.log.Error("preserving unreadable contacts failed", zap.Error(serr))
		}
		return s.Contacts(), fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	loaded, dropped := loaded.normalize()
	if dropped > 0 {
		s.log.Warn("dropped unnamed or duplicate contacts", zap.Int("count", dropped))
	}
	s.list = loaded
	return s.Contacts(), nil
}

// Save writes the whole list to the backend, replacing the previous blob.
func (s *Store) Save() error {
	data, err := json.Marshal(s.list)
	if err != nil {
		return fmt.Errorf("contacts: marshaling: %w", err)
	}
	if err := s.backend.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("contacts: saving %q: %w", s.key, err)
	}
	return nil
}

// Subscribe registers fn to run after every successful mutation, in
// subscription order. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// AutoSave subscribes a listener that saves after every mutation.
// Save failures are logged, not returned.
func (s *Store) AutoSave() (cancel func()) {
	return s.Subscribe(func(List) {
		if err := s.Save(); err != nil {
			s.log.Error("auto-save failed", zap.Error(err))
		}
	})
}

// commit installs next as the current list and notifies listeners.
func (s *Store) commit(next List) {
	s.list = next
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fn(s.Contacts())
		}
	}
}
