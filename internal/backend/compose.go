package backend

// Compose assembles a Client from independently chosen parts, e.g. the
// Google Tasks store behind in-memory auth and a polling notifier.
type Compose struct {
	Auth
	TaskStore
	Notifier
}

var _ Client = Compose{}
