package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"taskverse/internal/backend"
	"taskverse/internal/tasklist"
)

// keepAliveInterval paces SSE comment frames so proxies keep the stream open.
const keepAliveInterval = 25 * time.Second

// tasksData feeds the task page template.
type tasksData struct {
	User       backend.User
	Tasks      []backend.Task
	PendingAdd bool
	Notices    []tasklist.Notice
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.mountController(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "tasks.tmpl", tasksData{
		User:       ctl.User(),
		Tasks:      ctl.Tasks(),
		PendingAdd: ctl.PendingAdd(),
		Notices:    ctl.Notices(),
	})
}

// Task operations are post-redirect-get: the controller applies its
// optimistic contract, any notice it posted shows on the next render.

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.mountController(w, r)
	if !ok {
		return
	}
	ctl.Add(r.Context(), r.FormValue("text"))
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.mountController(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	prev := r.FormValue("completed") == "true"
	ctl.ToggleComplete(r.Context(), id, prev)
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.mountController(w, r)
	if !ok {
		return
	}
	ctl.Delete(r.Context(), mux.Vars(r)["id"])
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// handleTaskEvents streams a refresh event each time the controller
// reconciled after a change notification; the page script reloads the list
// on each one.
func (s *Server) handleTaskEvents(w http.ResponseWriter, r *http.Request) {
	ctl, ok := s.mountController(w, r)
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.baseCtx.Done():
			return
		case <-ctl.Refreshed():
			fmt.Fprint(w, "event: refresh\ndata: reload\n\n")
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// mountController returns the signed-in user's controller, mounting it on
// first use. A session that fails to resolve at mount time routes to login.
func (s *Server) mountController(w http.ResponseWriter, r *http.Request) (*tasklist.Controller, bool) {
	sess := sessionFrom(r.Context())
	if ctl := s.controllers.get(sess.User.ID); ctl != nil {
		ctl.SetSession(sess)
		return ctl, true
	}
	ctl, err := tasklist.Mount(s.baseCtx, s.client, sess.AccessToken, s.log)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	return s.controllers.put(sess.User.ID, ctl), true
}
