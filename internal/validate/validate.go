// Package validate holds the credential-form validation policy. The same
// rules run server-side on submit and are mirrored by the per-keystroke
// checks in the page scripts.
package validate

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Symbols is the fixed punctuation set a password must draw from.
const Symbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// MinPasswordLen is the minimum password length.
const MinPasswordLen = 8

// MinNameLen is the minimum display name length, in runes.
const MinNameLen = 2

// Validation messages, matching the forms' inline feedback.
var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters.")
	ErrPasswordClasses  = errors.New("Password must contain at least 8 characters, one uppercase, one lowercase, one number, and one special character.")
	ErrEmailInvalid     = errors.New("Please enter a valid email address.")
	ErrNameTooShort     = errors.New("Name must be at least 2 characters.")
)

// Password accepts a password of at least 8 characters containing at least
// one uppercase letter, one lowercase letter, one digit, and one symbol.
// Any missing class rejects with the composite message.
func Password(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrPasswordClasses
	}
	return nil
}

// Email accepts a syntactically valid bare address.
func Email(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ErrEmailInvalid
	}
	return nil
}

// Name accepts a display name of at least 2 characters after trimming.
func Name(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < MinNameLen {
		return ErrNameTooShort
	}
	return nil
}

// FieldErrors maps form field names to their validation messages. An empty
// map means the form is valid.
type FieldErrors map[string]string

// Login validates the login form fields.
func Login(email, password string) FieldErrors {
	fe := FieldErrors{}
	if err := Email(email); err != nil {
		fe["email"] = err.Error()
	}
	if err := Password(password); err != nil {
		fe["password"] = err.Error()
	}
	return fe
}

// Registration validates the registration form fields.
func Registration(name, email, password string) FieldErrors {
	fe := Login(email, password)
	if err := Name(name); err != nil {
		fe["name"] = err.Error()
	}
	return fe
}
