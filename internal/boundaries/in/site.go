// Package in defines input ports (interfaces) for use cases.
// These interfaces define the contract between driving adapters (CLI)
// and the application core.
package in

import (
	"context"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
)

// SiteService defines the contract for managing site configurations.
type SiteService interface {
	// Add renders, publishes and activates the configuration for a site.
	Add(ctx context.Context, req domain.SiteRequest) error

	// Remove deletes a site's configuration and reloads the web server.
	Remove(ctx context.Context, domainName string) error

	// List returns all stored sites.
	List(ctx context.Context) ([]domain.Site, error)

	// Show returns the stored configuration for a domain.
	Show(ctx context.Context, domainName string) (*domain.Site, error)

	// Preview renders the configuration Add would publish first, without side effects.
	Preview(ctx context.Context, req domain.SiteRequest) (string, error)
}

// ProxyService exposes the web server controller directly.
type ProxyService interface {
	// TestConfig validates the active configuration.
	TestConfig(ctx context.Context) (*out.ExecResult, error)

	// Reload reloads the web server.
	Reload(ctx context.Context) (*out.ExecResult, error)
}

// CronService installs the scheduled reload job.
type CronService interface {
	// EnsureReloadJob appends the job to the crontab unless an identical
	// entry exists. It reports whether an entry was added.
	EnsureReloadJob(ctx context.Context) (bool, error)

	// Entry returns the crontab line that EnsureReloadJob installs.
	Entry() string
}
