package out

import (
	"context"

	"github.com/bnema/sitectl/internal/domain"
)

// SiteStore persists one rendered configuration per domain.
type SiteStore interface {
	// Write replaces the configuration for a domain unconditionally.
	Write(ctx context.Context, domainName, config string) error

	// Stage writes a configuration and remembers what it replaced, so the
	// change can be undone if the web server rejects it.
	Stage(ctx context.Context, domainName, config string) (StagedChange, error)

	// Delete removes the configuration for a domain.
	// Returns domain.ErrSiteNotFound if there is none.
	Delete(ctx context.Context, domainName string) error

	// StageDelete removes the configuration for a domain, keeping a copy
	// so the removal can be undone.
	StageDelete(ctx context.Context, domainName string) (StagedChange, error)

	// Get returns the stored site for a domain.
	Get(ctx context.Context, domainName string) (*domain.Site, error)

	// Exists reports whether a configuration is stored for a domain.
	Exists(ctx context.Context, domainName string) (bool, error)

	// List returns all stored sites ordered by domain.
	List(ctx context.Context) ([]domain.Site, error)
}

// StagedChange is a store mutation that is already visible on disk but
// can still be reverted.
type StagedChange interface {
	// Commit discards the saved previous state.
	Commit() error
	// Rollback restores the previous state.
	Rollback() error
}

// CredentialStore locates operator-supplied certificates for custom mode.
type CredentialStore interface {
	// Lookup returns the host paths of the certificate and key for a domain.
	// Returns domain.ErrMissingCredential if either file is absent.
	Lookup(ctx context.Context, domainName string) (certPath, keyPath string, err error)
}
