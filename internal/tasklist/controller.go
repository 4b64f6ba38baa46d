// Package tasklist owns the signed-in user's task state: loading, the
// real-time reload subscription, and the create/toggle/delete operations
// with their optimistic-update contracts.
package tasklist

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"taskverse/internal/backend"
)

// Level classifies a transient notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient user-visible notification, the toast equivalent.
type Notice struct {
	Level   Level
	Message string
}

// Controller holds one mounted task list. Add is confirm-then-apply while
// Toggle and Delete are apply-then-confirm with rollback: a not-yet-created
// row has no id to roll back by, existing rows do. A reload triggered by
// another client's change can land between an optimistic edit and its
// confirmation; that race is accepted, the last write wins.
type Controller struct {
	client backend.Client
	log    *slog.Logger

	mu         sync.Mutex
	sess       *backend.Session
	tasks      []backend.Task
	pendingAdd bool
	notices    []Notice
	closed     bool

	sub       *backend.Subscription
	closeOnce sync.Once
	refreshed chan struct{}
}

// Mount resolves the current session, loads the task list, and opens the
// change subscription. An absent or unverifiable session returns
// backend.ErrNoSession so the caller can route to login; load and subscribe
// failures mount anyway and surface as notices.
func Mount(ctx context.Context, client backend.Client, accessToken string, log *slog.Logger) (*Controller, error) {
	if log == nil {
		log = slog.Default()
	}
	sess, err := client.GetSession(ctx, accessToken)
	if err != nil {
		return nil, backend.ErrNoSession
	}
	if sess == nil {
		return nil, backend.ErrNoSession
	}

	c := &Controller{
		client:    client,
		log:       log,
		sess:      sess,
		refreshed: make(chan struct{}, 1),
	}
	c.load(ctx)

	sub, err := client.Subscribe(ctx, backend.TasksTable)
	if err != nil {
		c.mu.Lock()
		c.notice(LevelError, failMessage(err, "Failed to subscribe to changes."))
		c.mu.Unlock()
		return c, nil
	}
	c.sub = sub
	go c.watch()
	return c, nil
}

// Close releases the change subscription. Safe to call from any exit path,
// any number of times; the release happens exactly once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
	})
}

// watch turns every change event into a full reload. The externally visible
// guarantee is only that local state converges to the backend after any
// change. The loop ends when Close drains the feed.
func (c *Controller) watch() {
	for range c.sub.Changes() {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		c.load(context.Background())
		c.signalRefresh()
	}
}

// load fetches the user's tasks, newest first, and replaces local state.
// On failure state stays as it was and an error notice is posted.
func (c *Controller) load(ctx context.Context) {
	tasks, err := c.client.SelectTasks(ctx, c.session())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err != nil {
		c.notice(LevelError, failMessage(err, "Failed to load tasks."))
		return
	}
	c.tasks = tasks
}

// Add submits a new task. Empty or whitespace-only text is silently ignored
// with no backend call. The local list only changes once the backend returns
// the inserted row, which is then prepended.
func (c *Controller) Add(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.closed || c.pendingAdd {
		c.mu.Unlock()
		return
	}
	c.pendingAdd = true
	sess := c.sess
	c.mu.Unlock()

	task, err := c.client.InsertTask(ctx, sess, backend.NewTask{
		UserID:    sess.User.ID,
		Text:      text,
		Completed: false,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingAdd = false
	if c.closed {
		return
	}
	if err != nil {
		c.notice(LevelError, failMessage(err, "Failed to add task."))
		return
	}
	c.tasks = append([]backend.Task{task}, c.tasks...)
	c.notice(LevelSuccess, "Task added successfully!")
}

// ToggleComplete flips the task's completed flag locally first, then asks
// the backend to set completed = !prevCompleted. On failure the one task's
// flag reverts to prevCompleted; no other task is touched and ordering
// never changes.
func (c *Controller) ToggleComplete(ctx context.Context, id string, prevCompleted bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.setCompleted(id, !prevCompleted)
	sess := c.sess
	c.mu.Unlock()

	next := !prevCompleted
	err := c.client.UpdateTask(ctx, sess, id, backend.TaskPatch{Completed: &next})
	if err == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.setCompleted(id, prevCompleted)
	c.notice(LevelError, failMessage(err, "Failed to update task."))
}

// Delete removes the task locally first, then asks the backend. On failure
// the full pre-delete snapshot is restored verbatim, discarding any other
// mutation applied while the request was in flight.
func (c *Controller) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snapshot := append([]backend.Task(nil), c.tasks...)
	kept := c.tasks[:0:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	sess := c.sess
	c.mu.Unlock()

	err := c.client.DeleteTask(ctx, sess, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if err != nil {
		c.tasks = snapshot
		c.notice(LevelError, failMessage(err, "Failed to delete task."))
		return
	}
	c.notice(LevelSuccess, "Task deleted successfully!")
}

// Tasks returns a copy of the current list, newest first.
func (c *Controller) Tasks() []backend.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]backend.Task(nil), c.tasks...)
}

// PendingAdd reports whether an add request is in flight; the submit control
// stays disabled while it is.
func (c *Controller) PendingAdd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingAdd
}

// User returns the session user's identity.
func (c *Controller) User() backend.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.User
}

// SetSession replaces the controller's session after a token refresh.
func (c *Controller) SetSession(sess *backend.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || sess == nil {
		return
	}
	c.sess = sess
}

// Notices drains and returns the pending notices.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Refreshed signals each time a change notification finished reconciling.
func (c *Controller) Refreshed() <-chan struct{} {
	return c.refreshed
}

func (c *Controller) session() *backend.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// notice appends a notification. Caller holds c.mu.
func (c *Controller) notice(level Level, msg string) {
	c.notices = append(c.notices, Notice{Level: level, Message: msg})
}

// setCompleted updates one task's flag in place. Caller holds c.mu.
func (c *Controller) setCompleted(id string, completed bool) {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].Completed = completed
			return
		}
	}
}

func (c *Controller) signalRefresh() {
	select {
	case c.refreshed <- struct{}{}:
	default:
	}
}

// failMessage prefers the backend's message, falling back like the original
// notifications did.
func failMessage(err error, fallback string) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return fallback
}
