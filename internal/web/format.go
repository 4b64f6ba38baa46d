package web

import (
	"strings"
	"unicode"

	"taskverse/internal/backend"
)

// displayText normalizes a task's text for rendering: newlines become
// spaces, and rows that somehow carry empty or whitespace-only text show as
// "(untitled)". Empty text never enters through this app, but a shared
// backend table can hold anything.
func displayText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}

// avatarInitial picks the letter on the user's avatar: first rune of the
// display name, falling back to the email, falling back to "?".
func avatarInitial(u backend.User) string {
	for _, source := range []string{u.Name, u.Email} {
		for _, r := range strings.TrimSpace(source) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}
