// Package contacts implements the contact list, its validation rules, and the
// Store that owns the list and persists it through a key-value backend.
package contacts

import "errors"

var (
	// ErrInvalidInput indicates an add was rejected: empty name or malformed email.
	ErrInvalidInput = errors.New("contacts: invalid input")
	// ErrNotFound indicates no contact with the given name exists.
	ErrNotFound = errors.New("contacts: contact not found")
	// ErrDuplicateName indicates an update would rename a contact onto another contact's name.
	ErrDuplicateName = errors.New("contacts: duplicate name")
	// ErrCorruptState indicates the persisted list could not be decoded.
	ErrCorruptState = errors.New("contacts: corrupt persisted state")
)

// Contact is a single name/phone/email record. Name is the list key.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Patch holds the fields to change on update. Nil fields are left untouched.
type Patch struct {
	Name  *string
	Phone *string
	Email *string
}

// Changes returns a Patch holding only the fields that differ between
// before and after.
func Changes(before, after Contact) Patch {
	var p Patch
	if after.Name != before.Name {
		p.Name = &after.Name
	}
	if after.Phone != before.Phone {
		p.Phone = &after.Phone
	}
	if after.Email != before.Email {
		p.Email = &after.Email
	}
	return p
}

// apply returns c with the patch fields applied. An empty name is ignored.
func (p Patch) apply(c Contact) Contact {
	if p.Name != nil && *p.Name != "" {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	return c
}

// List is an ordered contact list holding at most one contact per name.
// Every method returns a new slice; the receiver is never modified.
type List []Contact

// Index returns the position of the contact named name, or -1.
func (l List) Index(name string) int {
	for i, c := range l {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a copy of l. A nil list clones to an empty, non-nil list.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// AddOrMerge validates c and either appends it or merges it into the
// contact with the same name. On merge only a non-empty email is carried
// over; the existing phone is kept.
func (l List) AddOrMerge(c Contact) (List, bool, error) {
	if err := validateNew(c); err != nil {
		return l, false, err
	}

	i := l.Index(c.Name)
	if i < 0 {
		out := make(List, len(l), len(l)+1)
		copy(out, l)
		return append(out, c), false, nil
	}

	out := l.Clone()
	if c.Email != "" {
		out[i].Email = c.Email
	}
	return out, true, nil
}

// Delete removes the contact named name, preserving the order of the rest.
func (l List) Delete(name string) (List, error) {
	i := l.Index(name)
	if i < 0 {
		return l, ErrNotFound
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

// Update applies p to the contact named name. Fields are not re-validated.
func (l List) Update(name string, p Patch) (List, error) {
	i := l.Index(name)
	if i < 0 {
		return l, ErrNotFound
	}
	updated := p.apply(l[i])
	if updated.Name != name {
		if j := l.Index(updated.Name); j >= 0 && j != i {
			return l, ErrDuplicateName
		}
	}
	out := l.Clone()
	out[i] = updated
	return out, nil
}

// normalize drops entries with an empty name and later duplicates of a name.
// It reports how many entries were dropped.
func (l List) normalize() (List, int) {
	seen := make(map[string]struct{}, len(l))
	out := make(List, 0, len(l))
	for _, c := range l {
		if c.Name == "" {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out, len(l) - len(out)
}
