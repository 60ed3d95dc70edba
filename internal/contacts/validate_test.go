package contacts

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"ann.lee+tag@mail.example.org", true},
		{"a@b", false},
		{"a\u00a0b@c.com", false},
		{"@b.com", false},
		{"a@@b.com", false},
		{"a@b.", false},
		{"", false},
		{"a@b.com ", false},
		{"a b@c.com", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.in); got != tt.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"+15551234", true},
		{"0722", true},
		{"555-1234", false},
		{"555 1234", false},
		{"12a", false},
	}

	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateNew_ChecksNameBeforeEmail(t *testing.T) {
	// Given a contact with neither a name nor a valid email
	err := validateNew(Contact{Email: "bad"})

	// Then the name failure is reported
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("validateNew() error = %v, want ErrInvalidInput", err)
	}
	if got := err.Error(); got != "contacts: invalid input: name is required" {
		t.Errorf("validateNew() error = %q, want name failure", got)
	}
}

func TestValidateNew_EmptyEmailAllowed(t *testing.T) {
	if err := validateNew(Contact{Name: "Ann"}); err != nil {
		t.Errorf("validateNew(no email) error = %v, want nil", err)
	}
}
