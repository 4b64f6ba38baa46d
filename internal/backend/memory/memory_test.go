package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskverse/internal/backend"
	"taskverse/internal/backend/memory"
)

var ctx = context.Background()

func register(t *testing.T, c *memory.Client, email string) *backend.Session {
	t.Helper()
	_, err := c.SignUp(ctx, backend.Credentials{Email: email, Password: "Str0ng!pass", Name: "Test"})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	sess, err := c.SignInWithPassword(ctx, email, "Str0ng!pass")
	if err != nil {
		t.Fatalf("sign in %s: %v", email, err)
	}
	return sess
}

func TestSignUpReturnsNoSession(t *testing.T) {
	c := memory.New()
	sess, err := c.SignUp(ctx, backend.Credentials{Email: "ana@example.com", Password: "Str0ng!pass", Name: "Ana"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if sess != nil {
		t.Error("registration must not sign the user in")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	c := memory.New()
	register(t, c, "ana@example.com")
	_, err := c.SignUp(ctx, backend.Credentials{Email: "Ana@Example.com", Password: "0ther!pass", Name: "Ana"})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if backend.Message(err) != "User already registered" {
		t.Errorf("message = %q", backend.Message(err))
	}
}

func TestSignInWrongPassword(t *testing.T) {
	c := memory.New()
	register(t, c, "ana@example.com")
	for _, tc := range []struct{ email, pw string }{
		{"ana@example.com", "Wr0ng!pass"},
		{"nobody@example.com", "Str0ng!pass"},
	} {
		_, err := c.SignInWithPassword(ctx, tc.email, tc.pw)
		if err == nil || backend.Message(err) != "Invalid login credentials" {
			t.Errorf("SignIn(%s) err = %v", tc.email, err)
		}
	}
}

func TestGetSessionRoundTrip(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")

	got, err := c.GetSession(ctx, sess.AccessToken)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.User.ID != sess.User.ID || got.User.Email != "ana@example.com" || got.User.Name != "Test" {
		t.Errorf("user = %+v", got.User)
	}
	if time.Until(got.ExpiresAt) <= 0 {
		t.Error("session should not be expired")
	}

	for _, token := range []string{"", "garbage", sess.AccessToken + "x"} {
		if _, err := c.GetSession(ctx, token); !errors.Is(err, backend.ErrNoSession) {
			t.Errorf("GetSession(%q) = %v, want ErrNoSession", token, err)
		}
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")

	if err := c.SignOut(ctx, sess.AccessToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := c.GetSession(ctx, sess.AccessToken); !errors.Is(err, backend.ErrNoSession) {
		t.Errorf("revoked token accepted: %v", err)
	}
	if _, err := c.Refresh(ctx, sess.RefreshToken); !errors.Is(err, backend.ErrNoSession) {
		t.Errorf("revoked refresh token accepted: %v", err)
	}
	// Signing out twice is harmless.
	if err := c.SignOut(ctx, sess.AccessToken); err != nil {
		t.Errorf("second sign out: %v", err)
	}
}

func TestRefreshRotates(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")

	next, err := c.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.User.ID != sess.User.ID {
		t.Error("refresh changed the user")
	}
	if next.RefreshToken == sess.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := c.Refresh(ctx, sess.RefreshToken); !errors.Is(err, backend.ErrNoSession) {
		t.Error("spent refresh token accepted")
	}
	if _, err := c.GetSession(ctx, next.AccessToken); err != nil {
		t.Errorf("new access token rejected: %v", err)
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	c := memory.New()
	ana := register(t, c, "ana@example.com")
	bob := register(t, c, "bob@example.com")

	if _, err := c.InsertTask(ctx, ana, backend.NewTask{UserID: ana.User.ID, Text: "ana's"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	task, err := c.InsertTask(ctx, bob, backend.NewTask{UserID: bob.User.ID, Text: "bob's"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := c.SelectTasks(ctx, ana)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0].Text != "ana's" {
		t.Errorf("ana sees %v", got)
	}

	// Cross-user mutations do not find the row.
	completed := true
	if err := c.UpdateTask(ctx, ana, task.ID, backend.TaskPatch{Completed: &completed}); err == nil {
		t.Error("ana updated bob's task")
	}
	if err := c.DeleteTask(ctx, ana, task.ID); err == nil {
		t.Error("ana deleted bob's task")
	}
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")

	task, err := c.InsertTask(ctx, sess, backend.NewTask{UserID: sess.User.ID, Text: "hello"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if task.ID == "" || task.CreatedAt.IsZero() {
		t.Errorf("row missing backend-assigned fields: %+v", task)
	}
	if task.Completed {
		t.Error("new task should start not completed")
	}
}

func TestSelectOrdersNewestFirstWithStableTies(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")
	at := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		c.SeedTask(backend.Task{ID: id, Text: id, UserID: sess.User.ID, CreatedAt: at})
	}

	got, err := c.SelectTasks(ctx, sess)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[1].ID != "b" || got[2].ID != "a" {
		t.Errorf("equal timestamps must keep newest insertion first, got %v", got)
	}
}

func TestMutationsNotifySubscribers(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")
	sub, err := c.Subscribe(ctx, backend.TasksTable)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	task, _ := c.InsertTask(ctx, sess, backend.NewTask{UserID: sess.User.ID, Text: "x"})
	completed := true
	_ = c.UpdateTask(ctx, sess, task.ID, backend.TaskPatch{Completed: &completed})
	_ = c.DeleteTask(ctx, sess, task.ID)

	want := []backend.ChangeType{backend.ChangeInsert, backend.ChangeUpdate, backend.ChangeDelete}
	for _, w := range want {
		select {
		case ch := <-sub.Changes():
			if ch.Type != w || ch.Table != backend.TasksTable {
				t.Errorf("change = %+v, want %s on %s", ch, w, backend.TasksTable)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %s notification", w)
		}
	}
}

func TestErrorInjection(t *testing.T) {
	c := memory.New()
	sess := register(t, c, "ana@example.com")

	boom := backend.NewError("boom")
	c.SelectErr = boom
	if _, err := c.SelectTasks(ctx, sess); !errors.Is(err, boom) {
		t.Errorf("select err = %v", err)
	}
	c.SelectErr = nil
	c.SubscribeErr = boom
	if _, err := c.Subscribe(ctx, backend.TasksTable); !errors.Is(err, boom) {
		t.Errorf("subscribe err = %v", err)
	}
}
