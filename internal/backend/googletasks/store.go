// Package googletasks implements backend.TaskStore on the Google Tasks API,
// mapping the task table onto one Google Tasks list. It is an alternate
// drop-in store: auth and change notifications come from elsewhere (the
// in-memory adapter and the poller in this package).
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	"taskverse/internal/backend"
	"taskverse/internal/config"
)

const (
	// statusOpen and statusDone are the two task states the API knows.
	statusOpen = "needsAction"
	statusDone = "completed"

	// APITimeout bounds each Google API call.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks.
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Store implements backend.TaskStore against one Google Tasks list.
type Store struct {
	svc    *tasksapi.Service
	listID string
}

// New creates a store bound to the list titled cfg.GoogleTasksList, creating
// the list if it does not exist. Requires oauth_client.json and token.json
// under the configured Google directory.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}

	// Token source auto-refreshes expired access tokens.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	svc, err := tasksapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	listID, err := ensureList(ctx, svc, cfg.GoogleTasksList)
	if err != nil {
		return nil, err
	}
	return &Store{svc: svc, listID: listID}, nil
}

// ensureList resolves the backing list by title, creating it when absent.
func ensureList(ctx context.Context, svc *tasksapi.Service, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var found string
	err := svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasksapi.TaskLists) error {
		for _, l := range resp.Items {
			if strings.EqualFold(strings.TrimSpace(l.Title), title) {
				found = l.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if found != "" {
		return found, nil
	}
	created, err := svc.Tasklists.Insert(&tasksapi.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return created.Id, nil
}

// SelectTasks implements backend.TaskStore. Google Tasks records no creation
// time, so the last-updated stamp stands in for created_at ordering.
func (s *Store) SelectTasks(ctx context.Context, sess *backend.Session) ([]backend.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var out []backend.Task
	err := s.svc.Tasks.List(s.listID).
		MaxResults(100).
		ShowCompleted(true).
		ShowHidden(true).
		Pages(ctx, func(resp *tasksapi.Tasks) error {
			for _, t := range resp.Items {
				out = append(out, toTask(t, sess.User.ID))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InsertTask implements backend.TaskStore.
func (s *Store) InsertTask(ctx context.Context, sess *backend.Session, nt backend.NewTask) (backend.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := s.svc.Tasks.Insert(s.listID, &tasksapi.Task{Title: nt.Text}).Context(ctx).Do()
	if err != nil {
		return backend.Task{}, wrapError(err)
	}
	return toTask(created, nt.UserID), nil
}

// UpdateTask implements backend.TaskStore.
func (s *Store) UpdateTask(ctx context.Context, sess *backend.Session, id string, patch backend.TaskPatch) error {
	if patch.Completed == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	status := statusOpen
	if *patch.Completed {
		status = statusDone
	}
	_, err := s.svc.Tasks.Patch(s.listID, id, &tasksapi.Task{Status: status}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteTask implements backend.TaskStore.
func (s *Store) DeleteTask(ctx context.Context, sess *backend.Session, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := s.svc.Tasks.Delete(s.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func toTask(t *tasksapi.Task, userID string) backend.Task {
	created, _ := time.Parse(time.RFC3339, t.Updated)
	return backend.Task{
		ID:        t.Id,
		Text:      t.Title,
		Completed: t.Status == statusDone,
		UserID:    userID,
		CreatedAt: created,
	}
}

// wrapError collapses API errors into user-facing backend errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "context deadline exceeded"):
		return backend.NewError("request timed out")
	case strings.Contains(errStr, "401"), strings.Contains(errStr, "403"):
		return backend.NewError("Google token expired or revoked")
	case strings.Contains(errStr, "404"):
		return backend.NewError("not found")
	}
	return backend.NewError(errStr)
}
