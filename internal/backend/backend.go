package backend

import "context"

// Auth is the authentication surface of the managed backend.
type Auth interface {
	// SignUp registers a new user. The returned session is nil when the
	// backend requires email confirmation before the first sign-in.
	SignUp(ctx context.Context, creds Credentials) (*Session, error)

	// SignInWithPassword exchanges email/password for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// GetSession resolves an access token to its session. A missing or
	// expired session is reported as ErrNoSession, not a backend Error.
	GetSession(ctx context.Context, accessToken string) (*Session, error)

	// Refresh exchanges a refresh token for a fresh session.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)

	// SignOut revokes the session behind the access token.
	SignOut(ctx context.Context, accessToken string) error
}

// TaskStore is the row surface of the managed backend. Row-level access
// policy is the backend's job: adapters present the session's token and
// trust the backend to scope visibility to the owning user.
type TaskStore interface {
	// SelectTasks returns the session user's tasks, newest first.
	SelectTasks(ctx context.Context, sess *Session) ([]Task, error)

	// InsertTask inserts a row and returns it with backend-assigned fields.
	InsertTask(ctx context.Context, sess *Session, nt NewTask) (Task, error)

	// UpdateTask applies a partial update to the row with the given id.
	UpdateTask(ctx context.Context, sess *Session, id string, patch TaskPatch) error

	// DeleteTask removes the row with the given id. Deletion is permanent.
	DeleteTask(ctx context.Context, sess *Session, id string) error
}

// Notifier is the real-time change feed of the managed backend.
type Notifier interface {
	// Subscribe opens one change subscription for the given table. Events of
	// every type are delivered; the caller releases the subscription with
	// Unsubscribe when done.
	Subscribe(ctx context.Context, table string) (*Subscription, error)
}

// Client bundles the three backend surfaces. A concrete adapter (hosted,
// in-memory, Google Tasks) implements all of them or is composed from parts.
type Client interface {
	Auth
	TaskStore
	Notifier
}
