package supabase

import (
	"context"
	"net/http"
	"net/url"

	"taskverse/internal/backend"
)

// Row access goes through PostgREST. Requests carry the session's bearer
// token; visibility is the backend row-level policy's job, so SelectTasks
// deliberately sends no user filter.

func (c *Client) tasksURL(query url.Values) string {
	u := c.baseURL + "/rest/v1/" + backend.TasksTable
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// SelectTasks implements backend.TaskStore.
func (c *Client) SelectTasks(ctx context.Context, sess *backend.Session) ([]backend.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	req, err := c.newRequest(ctx, http.MethodGet, c.tasksURL(q), sess.AccessToken, nil)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	var tasks []backend.Task
	if err := c.do(req, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// InsertTask implements backend.TaskStore, asking for the inserted row back.
func (c *Client) InsertTask(ctx context.Context, sess *backend.Session, nt backend.NewTask) (backend.Task, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.tasksURL(nil), sess.AccessToken, nt)
	if err != nil {
		return backend.Task{}, backend.NewError(err.Error())
	}
	req.Header.Set("Prefer", "return=representation")

	var rows []backend.Task
	if err := c.do(req, &rows); err != nil {
		return backend.Task{}, err
	}
	if len(rows) == 0 {
		return backend.Task{}, backend.NewError("insert returned no row")
	}
	return rows[0], nil
}

// UpdateTask implements backend.TaskStore.
func (c *Client) UpdateTask(ctx context.Context, sess *backend.Session, id string, patch backend.TaskPatch) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	req, err := c.newRequest(ctx, http.MethodPatch, c.tasksURL(q), sess.AccessToken, patch)
	if err != nil {
		return backend.NewError(err.Error())
	}
	req.Header.Set("Prefer", "return=minimal")
	return c.do(req, nil)
}

// DeleteTask implements backend.TaskStore.
func (c *Client) DeleteTask(ctx context.Context, sess *backend.Session, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	req, err := c.newRequest(ctx, http.MethodDelete, c.tasksURL(q), sess.AccessToken, nil)
	if err != nil {
		return backend.NewError(err.Error())
	}
	return c.do(req, nil)
}
