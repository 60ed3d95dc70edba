package kv

import (
	"fmt"
	"sort"
	"strings"
)

// Store is the interface every backend satisfies.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Factory opens a backend rooted at dir.
type Factory func(dir string) (Store, error)

// Registry maps backend names to factory functions.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a Registry with the file, sqlite, and memory backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("file", func(dir string) (Store, error) { return NewFileStore(dir), nil })
	r.Register("sqlite", func(dir string) (Store, error) { return NewSQLiteStore(dir) })
	r.Register("memory", func(string) (Store, error) { return NewMemoryStore(), nil })
	return r
}

// Register adds a named backend factory. Overwrites if name already exists.
// Panics if name is empty or f is nil (programmer error).
func (r *Registry) Register(name string, f Factory) {
	if name == "" {
		panic("kv: Register called with empty name")
	}
	if f == nil {
		panic("kv: Register called with nil factory")
	}
	r.factories[name] = f
}

// Open instantiates a backend by name.
// Returns an error if the name is not registered or the factory fails.
func (r *Registry) Open(name, dir string) (Store, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownBackendError{
			Name:      name,
			Available: r.Available(),
		}
	}
	s, err := f(dir)
	if err != nil {
		return nil, fmt.Errorf("kv: backend %q: %w", name, err)
	}
	return s, nil
}

// Available returns registered backend names in sorted order.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownBackendError indicates a backend name is not registered.
type UnknownBackendError struct {
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown storage backend %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
