// Package memory implements backend.Client entirely in process. It is the
// development backend and the test double: same surface as the hosted
// adapter, with per-method error injection for exercising failure paths.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskverse/internal/backend"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = time.Hour

type user struct {
	id           string
	email        string
	name         string
	passwordHash []byte
}

type row struct {
	task backend.Task
	seq  int64 // insertion order tiebreak for identical created_at
}

// Client is an in-memory backend.Client.
type Client struct {
	mu       sync.Mutex
	secret   []byte
	users    map[string]*user            // email -> user
	byID     map[string]*user            // id -> user
	sessions map[string]*backend.Session // access token -> session
	refresh  map[string]string           // refresh token -> user id
	rows     []row
	seq      int64
	subs     []*backend.Subscription
	now      func() time.Time

	// Error injection for testing.
	SignUpErr    error
	SignInErr    error
	GetSessErr   error
	RefreshErr   error
	SignOutErr   error
	SelectErr    error
	InsertErr    error
	UpdateErr    error
	DeleteErr    error
	SubscribeErr error
}

// New creates an empty in-memory backend with a random signing secret.
func New() *Client {
	return &Client{
		secret:   []byte(uuid.NewString()),
		users:    make(map[string]*user),
		byID:     make(map[string]*user),
		sessions: make(map[string]*backend.Session),
		refresh:  make(map[string]string),
		now:      time.Now,
	}
}

// SignUp implements backend.Auth. Registration never returns a session: like
// the hosted backend with email confirmation enabled, the user signs in
// separately. Confirmation itself is skipped.
func (c *Client) SignUp(ctx context.Context, creds backend.Credentials) (*backend.Session, error) {
	if c.SignUpErr != nil {
		return nil, c.SignUpErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if _, ok := c.users[email]; ok {
		return nil, backend.NewError("User already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	u := &user{
		id:           uuid.NewString(),
		email:        email,
		name:         creds.Name,
		passwordHash: hash,
	}
	c.users[email] = u
	c.byID[u.id] = u
	return nil, nil
}

// SignInWithPassword implements backend.Auth.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	if c.SignInErr != nil {
		return nil, c.SignInErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, backend.NewError("Invalid login credentials")
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, backend.NewError("Invalid login credentials")
	}
	return c.issueSession(u)
}

// issueSession mints a signed access token and records the session.
// Caller holds c.mu.
func (c *Client) issueSession(u *user) (*backend.Session, error) {
	expires := c.now().Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":   u.id,
		"email": u.email,
		"exp":   jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	sess := &backend.Session{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    expires,
		User:         backend.User{ID: u.id, Email: u.email, Name: u.name},
	}
	c.sessions[sess.AccessToken] = sess
	c.refresh[sess.RefreshToken] = u.id
	return sess, nil
}

// GetSession implements backend.Auth. The token must parse, verify, and
// still be on record (sign-out revokes it before expiry).
func (c *Client) GetSession(ctx context.Context, accessToken string) (*backend.Session, error) {
	if c.GetSessErr != nil {
		return nil, c.GetSessErr
	}
	if accessToken == "" {
		return nil, backend.ErrNoSession
	}
	_, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, backend.ErrNoSession
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[accessToken]
	if !ok {
		return nil, backend.ErrNoSession
	}
	cp := *sess
	return &cp, nil
}

// Refresh implements backend.Auth. The spent refresh token is rotated.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*backend.Session, error) {
	if c.RefreshErr != nil {
		return nil, c.RefreshErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	userID, ok := c.refresh[refreshToken]
	if !ok {
		return nil, backend.ErrNoSession
	}
	u, ok := c.byID[userID]
	if !ok {
		return nil, backend.ErrNoSession
	}
	delete(c.refresh, refreshToken)
	return c.issueSession(u)
}

// SignOut implements backend.Auth.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if c.SignOutErr != nil {
		return c.SignOutErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if sess, ok := c.sessions[accessToken]; ok {
		delete(c.refresh, sess.RefreshToken)
		delete(c.sessions, accessToken)
	}
	return nil
}

// SelectTasks implements backend.TaskStore. Rows are scoped to the session
// user and returned newest first.
func (c *Client) SelectTasks(ctx context.Context, sess *backend.Session) ([]backend.Task, error) {
	if c.SelectErr != nil {
		return nil, c.SelectErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var owned []row
	for _, r := range c.rows {
		if r.task.UserID == sess.User.ID {
			owned = append(owned, r)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].task.CreatedAt.Equal(owned[j].task.CreatedAt) {
			return owned[i].seq > owned[j].seq
		}
		return owned[i].task.CreatedAt.After(owned[j].task.CreatedAt)
	})
	out := make([]backend.Task, len(owned))
	for i, r := range owned {
		out[i] = r.task
	}
	return out, nil
}

// InsertTask implements backend.TaskStore.
func (c *Client) InsertTask(ctx context.Context, sess *backend.Session, nt backend.NewTask) (backend.Task, error) {
	if c.InsertErr != nil {
		return backend.Task{}, c.InsertErr
	}
	c.mu.Lock()
	c.seq++
	t := backend.Task{
		ID:        uuid.NewString(),
		Text:      nt.Text,
		Completed: nt.Completed,
		UserID:    nt.UserID,
		CreatedAt: c.now(),
	}
	c.rows = append(c.rows, row{task: t, seq: c.seq})
	c.mu.Unlock()

	c.publish(backend.ChangeInsert)
	return t, nil
}

// UpdateTask implements backend.TaskStore.
func (c *Client) UpdateTask(ctx context.Context, sess *backend.Session, id string, patch backend.TaskPatch) error {
	if c.UpdateErr != nil {
		return c.UpdateErr
	}
	c.mu.Lock()
	found := false
	for i := range c.rows {
		if c.rows[i].task.ID == id && c.rows[i].task.UserID == sess.User.ID {
			if patch.Completed != nil {
				c.rows[i].task.Completed = *patch.Completed
			}
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return backend.NewError("row not found")
	}
	c.publish(backend.ChangeUpdate)
	return nil
}

// DeleteTask implements backend.TaskStore.
func (c *Client) DeleteTask(ctx context.Context, sess *backend.Session, id string) error {
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	c.mu.Lock()
	found := false
	for i := range c.rows {
		if c.rows[i].task.ID == id && c.rows[i].task.UserID == sess.User.ID {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()

	if !found {
		return backend.NewError("row not found")
	}
	c.publish(backend.ChangeDelete)
	return nil
}

// Subscribe implements backend.Notifier.
func (c *Client) Subscribe(ctx context.Context, table string) (*backend.Subscription, error) {
	if c.SubscribeErr != nil {
		return nil, c.SubscribeErr
	}
	sub := backend.NewSubscription(nil)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub, nil
}

// publish fans a change out to every subscriber. Released subscriptions
// drop the event themselves.
func (c *Client) publish(typ backend.ChangeType) {
	c.mu.Lock()
	subs := make([]*backend.Subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, s := range subs {
		s.Publish(backend.Change{Type: typ, Table: backend.TasksTable})
	}
}

// SeedTask inserts a row directly, bypassing change notifications. For tests.
func (c *Client) SeedTask(t backend.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = c.now()
	}
	c.rows = append(c.rows, row{task: t, seq: c.seq})
}
