package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/sitectl/internal/domain"
)

// CredentialStore finds operator-supplied certificates named
// <domain>.crt and <domain>.key in a directory.
type CredentialStore struct {
	dir string
}

// NewCredentialStore creates a credential store rooted at dir.
func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{dir: expandTilde(dir)}
}

// Lookup returns the certificate and key paths for a domain.
func (c *CredentialStore) Lookup(_ context.Context, domainName string) (string, string, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return "", "", err
	}

	certPath := filepath.Join(c.dir, domainName+".crt")
	keyPath := filepath.Join(c.dir, domainName+".key")

	for _, p := range []string{certPath, keyPath} {
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, p)
			}
			return "", "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			return "", "", fmt.Errorf("%w: %s is not a regular file", domain.ErrMissingCredential, p)
		}
	}

	return certPath, keyPath, nil
}
