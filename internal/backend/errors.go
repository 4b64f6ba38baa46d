package backend

import "errors"

// ErrNoSession reports that no authenticated session exists. Guards treat
// this as a routing decision, not a failure.
var ErrNoSession = errors.New("no active session")

// Error is a backend request failure. Network failures, authorization
// failures, and constraint violations all collapse into this one type; the
// message is the human-readable text shown to the user.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a backend Error from a message.
func NewError(msg string) *Error {
	if msg == "" {
		msg = "request failed"
	}
	return &Error{Message: msg}
}

// Message extracts the user-facing text from a backend Error. Other errors
// yield the empty string so callers can fall back to their own wording.
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
