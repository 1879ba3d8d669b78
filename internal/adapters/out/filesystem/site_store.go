// Package filesystem implements the site store and credential lookup on the local filesystem.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

const siteFileExt = ".conf"

// SiteStore keeps one <domain>.conf file per site in a directory.
type SiteStore struct {
	dir string
}

// NewSiteStore returns a store over dir. The directory is created by the
// first write.
func NewSiteStore(dir string) *SiteStore {
	return &SiteStore{dir: expandTilde(dir)}
}

// expandTilde replaces a leading "~/" with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path[2:])
	}
	return path
}

func (s *SiteStore) path(domainName string) (string, error) {
	if err := domain.ValidateDomain(domainName); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, domainName+siteFileExt), nil
}

// Write replaces the configuration for a domain.
func (s *SiteStore) Write(ctx context.Context, domainName, config string) error {
	path, err := s.path(domainName)
	if err != nil {
		return err
	}

	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "filesystem",
		logging.FieldAction:  "Write",
		"path":               path,
	})

	// The web server reads these files, possibly as another user.
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return logging.WrapErr(ctx, err, "failed to create sites directory")
	}
	if err := writeFile(path, []byte(config)); err != nil {
		return logging.WrapErr(ctx, err, "failed to write site file")
	}

	logging.FromCtx(ctx).Debug().Int("bytes", len(config)).Msg("site file written")
	return nil
}

// Stage writes a configuration and keeps the previous content for Rollback.
func (s *SiteStore) Stage(ctx context.Context, domainName, config string) (out.StagedChange, error) {
	path, err := s.path(domainName)
	if err != nil {
		return nil, err
	}

	prev, existed, err := readIfExists(path)
	if err != nil {
		return nil, err
	}

	if err := s.Write(ctx, domainName, config); err != nil {
		return nil, err
	}

	return &stagedChange{path: path, prev: prev, existed: existed}, nil
}

// Delete removes the configuration for a domain.
func (s *SiteStore) Delete(_ context.Context, domainName string) error {
	path, err := s.path(domainName)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrSiteNotFound, domainName)
		}
		return fmt.Errorf("failed to remove site file: %w", err)
	}
	return nil
}

// StageDelete removes the configuration for a domain and keeps its content for Rollback.
func (s *SiteStore) StageDelete(ctx context.Context, domainName string) (out.StagedChange, error) {
	path, err := s.path(domainName)
	if err != nil {
		return nil, err
	}

	prev, existed, err := readIfExists(path)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, domainName)
	}

	if err := s.Delete(ctx, domainName); err != nil {
		return nil, err
	}

	return &stagedChange{path: path, prev: prev, existed: true}, nil
}

// Get returns the stored site for a domain.
func (s *SiteStore) Get(_ context.Context, domainName string) (*domain.Site, error) {
	path, err := s.path(domainName)
	if err != nil {
		return nil, err
	}

	data, existed, err := readIfExists(path)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, domainName)
	}

	site := siteFromConfig(domainName, string(data))
	return &site, nil
}

// Exists reports whether a configuration is stored for a domain.
func (s *SiteStore) Exists(_ context.Context, domainName string) (bool, error) {
	path, err := s.path(domainName)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat site file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// List returns every *.conf file in the sites directory, ordered by domain.
// A missing directory lists as empty.
func (s *SiteStore) List(_ context.Context) ([]domain.Site, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Site{}, nil
		}
		return nil, fmt.Errorf("failed to read sites directory: %w", err)
	}

	sites := make([]domain.Site, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, siteFileExt) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read site file %s: %w", name, err)
		}
		sites = append(sites, siteFromConfig(strings.TrimSuffix(name, siteFileExt), string(data)))
	}

	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Domain < sites[j].Domain
	})
	return sites, nil
}

func siteFromConfig(domainName, config string) domain.Site {
	backend, mode := domain.ParseSiteHeader(config)
	return domain.Site{
		Domain:  domainName,
		Backend: backend,
		Mode:    mode,
		Config:  config,
	}
}

func readIfExists(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read site file: %w", err)
	}
	return data, true, nil
}

func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, strings.NewReader(string(data))); err != nil {
		return err
	}
	return os.Chmod(path, 0644)
}

// stagedChange restores a site file to the content it had before Stage or StageDelete.
type stagedChange struct {
	path    string
	prev    []byte
	existed bool
	done    bool
}

func (c *stagedChange) Commit() error {
	c.done = true
	return nil
}

func (c *stagedChange) Rollback() error {
	if c.done {
		return fmt.Errorf("change to %s already finished", filepath.Base(c.path))
	}
	c.done = true

	if c.existed {
		if err := writeFile(c.path, c.prev); err != nil {
			return fmt.Errorf("failed to restore %s: %w", filepath.Base(c.path), err)
		}
		return nil
	}

	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", filepath.Base(c.path), err)
	}
	return nil
}
