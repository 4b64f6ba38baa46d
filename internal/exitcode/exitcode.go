// Package exitcode defines process exit codes for the server binary.
package exitcode

const (
	// Success indicates a clean shutdown.
	Success = 0

	// ConfigError indicates bad or unreadable configuration.
	ConfigError = 1

	// ServerError indicates the HTTP server failed to start or serve.
	ServerError = 2

	// BackendError indicates the backend adapter could not be built.
	BackendError = 3
)
