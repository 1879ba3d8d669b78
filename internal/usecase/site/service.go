// Package site implements the site configuration lifecycle use case:
// rendering server blocks, publishing them to the site store, obtaining
// certificates and validating and reloading the web server.
package site

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

// Config holds the certificate request defaults.
type Config struct {
	Webroot string // challenge directory on the host, handed to the provisioner
	Email   string
	KeySize int
	Staging bool
}

// Service implements the SiteService and ProxyService interfaces.
type Service struct {
	store       out.SiteStore
	creds       out.CredentialStore
	provisioner out.CertProvisioner
	proxy       out.ProxyController
	renderer    *Renderer
	config      Config
}

// NewService creates a new site service.
func NewService(
	store out.SiteStore,
	creds out.CredentialStore,
	provisioner out.CertProvisioner,
	proxy out.ProxyController,
	renderer *Renderer,
	config Config,
) *Service {
	return &Service{
		store:       store,
		creds:       creds,
		provisioner: provisioner,
		proxy:       proxy,
		renderer:    renderer,
		config:      config,
	}
}

// Add renders and activates the configuration for a site.
//
// For auto mode the plaintext form is published and reloaded first so the
// challenge location is reachable; the secure form replaces it only after
// the provisioner succeeds.
func (s *Service) Add(ctx context.Context, req domain.SiteRequest) error {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "Add",
		logging.FieldDomain:  req.Domain,
		"mode":               string(req.Mode),
	})
	log := logging.FromCtx(ctx)

	text, err := s.render(ctx, req)
	if err != nil {
		return err
	}

	replaced, err := s.store.Exists(ctx, req.Domain)
	if err != nil {
		return logging.WrapErr(ctx, err, "failed to check existing site configuration")
	}
	if err := s.publish(ctx, req.Domain, text); err != nil {
		return err
	}

	if req.Mode != domain.ModeAuto {
		log.Info().Str("backend", req.Backend).Bool("replaced", replaced).Msg("site added")
		return nil
	}

	log.Info().Msg("plaintext configuration active, requesting certificate")
	if err := s.obtainCertificate(ctx, req.Domain); err != nil {
		return err
	}

	secure, err := s.renderer.Render(req, s.renderer.TLSFilesFor(req))
	if err != nil {
		return err
	}
	if err := s.publish(ctx, req.Domain, secure); err != nil {
		return err
	}

	log.Info().Str("backend", req.Backend).Bool("replaced", replaced).Msg("site added with certificate")
	return nil
}

// Preview renders the configuration Add would publish first.
func (s *Service) Preview(ctx context.Context, req domain.SiteRequest) (string, error) {
	return s.render(ctx, req)
}

// render validates req and produces its first publishable configuration.
func (s *Service) render(ctx context.Context, req domain.SiteRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	switch req.Mode {
	case domain.ModeHTTP, domain.ModeAuto:
		return s.renderer.Render(req, nil)
	case domain.ModeCustom:
		certPath, keyPath, err := s.creds.Lookup(ctx, req.Domain)
		if err != nil {
			return "", err
		}
		logging.FromCtx(ctx).Debug().
			Str("certificate", certPath).
			Str("key", keyPath).
			Msg("custom credentials found")
		return s.renderer.Render(req, s.renderer.TLSFilesFor(req))
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode)
}

// Remove deletes a site and reloads the web server.
func (s *Service) Remove(ctx context.Context, domainName string) error {
	domainName = domain.NormalizeDomain(domainName)
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "Remove",
		logging.FieldDomain:  domainName,
	})
	log := logging.FromCtx(ctx)

	if err := domain.ValidateDomain(domainName); err != nil {
		return err
	}

	change, err := s.store.StageDelete(ctx, domainName)
	if err != nil {
		if errors.Is(err, domain.ErrSiteNotFound) {
			return err
		}
		return logging.WrapErr(ctx, err, "failed to remove site configuration")
	}

	if err := s.applyChange(ctx, change); err != nil {
		return err
	}

	log.Info().Msg("site removed")
	return nil
}

// List returns all stored sites.
func (s *Service) List(ctx context.Context) ([]domain.Site, error) {
	return s.store.List(ctx)
}

// Show returns the stored site for a domain.
func (s *Service) Show(ctx context.Context, domainName string) (*domain.Site, error) {
	domainName = domain.NormalizeDomain(domainName)
	if err := domain.ValidateDomain(domainName); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, domainName)
}

// TestConfig runs the web server's configuration test.
func (s *Service) TestConfig(ctx context.Context) (*out.ExecResult, error) {
	return s.proxy.Validate(ctx)
}

// Reload reloads the web server.
func (s *Service) Reload(ctx context.Context) (*out.ExecResult, error) {
	return s.proxy.Reload(ctx)
}

// publish stages text for domainName and activates it.
func (s *Service) publish(ctx context.Context, domainName, text string) error {
	change, err := s.store.Stage(ctx, domainName, text)
	if err != nil {
		return logging.WrapErr(ctx, err, "failed to write site configuration")
	}
	return s.applyChange(ctx, change)
}

// applyChange validates a staged change, reverting it if the web server
// rejects the result, then commits it and reloads.
func (s *Service) applyChange(ctx context.Context, change out.StagedChange) error {
	if err := s.validate(ctx); err != nil {
		if rbErr := change.Rollback(); rbErr != nil {
			return multierror.Append(err, fmt.Errorf("failed to restore previous configuration: %w", rbErr))
		}
		logging.FromCtx(ctx).Warn().Msg("configuration rejected, previous state restored")
		return err
	}

	if err := change.Commit(); err != nil {
		return logging.WrapErr(ctx, err, "failed to commit site configuration")
	}

	return s.reload(ctx)
}

func (s *Service) validate(ctx context.Context) error {
	res, err := s.proxy.Validate(ctx)
	if err != nil {
		return logging.WrapErr(ctx, err, "failed to run configuration test")
	}
	if !res.Success() {
		logging.FromCtx(ctx).Error().
			Int(logging.FieldExitCode, res.ExitCode).
			Str("output", res.Output()).
			Msg("configuration test failed")
		return &domain.ProcessError{
			Op:       "configuration test",
			ExitCode: res.ExitCode,
			Output:   res.Output(),
			Err:      domain.ErrValidationFailed,
		}
	}
	return nil
}

func (s *Service) reload(ctx context.Context) error {
	res, err := s.proxy.Reload(ctx)
	if err != nil {
		return logging.WrapErr(ctx, err, "failed to run reload")
	}
	if !res.Success() {
		return &domain.ProcessError{
			Op:       "reload",
			ExitCode: res.ExitCode,
			Output:   res.Output(),
			Err:      domain.ErrReloadFailed,
		}
	}
	return nil
}

func (s *Service) obtainCertificate(ctx context.Context, domainName string) error {
	req := domain.CertRequest{
		Domain:  domainName,
		Webroot: s.config.Webroot,
		Email:   s.config.Email,
		KeySize: s.config.KeySize,
		Staging: s.config.Staging,
	}

	res, err := s.provisioner.Obtain(ctx, req)
	if err != nil {
		logging.FromCtx(ctx).Error().Err(err).Msg("certificate provisioner could not run")
		return fmt.Errorf("%w: %v", domain.ErrProvisionerFailed, err)
	}
	if !res.Success() {
		logging.FromCtx(ctx).Error().
			Int(logging.FieldExitCode, res.ExitCode).
			Msg("certificate provisioner failed, plaintext configuration kept")
		return &domain.ProcessError{
			Op:       "certificate provisioning",
			ExitCode: res.ExitCode,
			Output:   res.Output(),
			Err:      domain.ErrProvisionerFailed,
		}
	}
	return nil
}
