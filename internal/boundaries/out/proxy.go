package out

import "context"

// ProxyController validates and reloads the web server configuration.
type ProxyController interface {
	// Validate tests the configuration currently on disk.
	Validate(ctx context.Context) (*ExecResult, error)

	// Reload makes the web server pick up the configuration on disk.
	Reload(ctx context.Context) (*ExecResult, error)
}
