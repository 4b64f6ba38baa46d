package web

import (
	"sync"

	"taskverse/internal/tasklist"
)

// controllerSet tracks one mounted task list controller per signed-in user.
type controllerSet struct {
	mu sync.Mutex
	m  map[string]*tasklist.Controller
}

func newControllerSet() *controllerSet {
	return &controllerSet{m: make(map[string]*tasklist.Controller)}
}

func (cs *controllerSet) get(userID string) *tasklist.Controller {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.m[userID]
}

// put registers a freshly mounted controller. If another request mounted one
// concurrently, the newcomer is closed and the existing one wins, so each
// user holds exactly one subscription.
func (cs *controllerSet) put(userID string, ctl *tasklist.Controller) *tasklist.Controller {
	cs.mu.Lock()
	existing, ok := cs.m[userID]
	if !ok {
		cs.m[userID] = ctl
	}
	cs.mu.Unlock()
	if ok {
		ctl.Close()
		return existing
	}
	return ctl
}

// remove unregisters and returns the user's controller, if any.
func (cs *controllerSet) remove(userID string) *tasklist.Controller {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ctl := cs.m[userID]
	delete(cs.m, userID)
	return ctl
}

// closeAll releases every mounted controller.
func (cs *controllerSet) closeAll() {
	cs.mu.Lock()
	ctls := make([]*tasklist.Controller, 0, len(cs.m))
	for _, c := range cs.m {
		ctls = append(ctls, c)
	}
	cs.m = make(map[string]*tasklist.Controller)
	cs.mu.Unlock()
	for _, c := range ctls {
		c.Close()
	}
}
