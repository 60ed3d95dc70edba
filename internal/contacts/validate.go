package contacts

import (
	"fmt"
	"regexp"
)

// The class excludes what browsers treat as whitespace: Go's \s plus \v,
// the Unicode separators, and the BOM.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

var phonePattern = regexp.MustCompile(`^[0-9+]+$`)

// ValidateEmail reports whether s looks like local@domain.tld.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s is empty or made only of digits and '+'.
func ValidPhone(s string) bool {
	return s == "" || phonePattern.MatchString(s)
}

// validateNew checks the add preconditions in order: name, then email.
func validateNew(c Contact) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if c.Email != "" && !ValidateEmail(c.Email) {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidInput, c.Email)
	}
	return nil
}
