// Package backend defines the backend-agnostic interface for auth and task
// operations. Web handlers and the task list controller never import a
// concrete adapter directly.
package backend

import "time"

// Task is the single domain entity: one row in the tasks table.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask is the payload for an insert. The backend assigns id and created_at.
type NewTask struct {
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Completed *bool `json:"completed,omitempty"`
}

// User is the authenticated user's identity and display metadata.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is the sign-up payload.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

// Session is the server-issued proof of authentication. It is created on
// successful sign-in, destroyed on sign-out or expiry, and carries the tokens
// the store adapters present on every request.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// ChangeType identifies the kind of row change a notification reports.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Change is a backend-pushed notification that a row in a watched table was
// inserted, updated, or deleted.
type Change struct {
	Type  ChangeType
	Table string
}

// TasksTable is the one table this application watches and mutates.
const TasksTable = "tasks"
