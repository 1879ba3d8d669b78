// Package certbot obtains certificates by running the certbot CLI in webroot mode.
package certbot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

// DefaultCommand is used when no certbot command is configured.
var DefaultCommand = []string{"certbot"}

// Provisioner implements out.CertProvisioner.
type Provisioner struct {
	executor  out.CommandExecutor
	command   []string
	configDir string
}

// NewProvisioner creates a certbot provisioner. command is the certbot
// invocation, e.g. ["docker", "compose", "run", "--rm", "certbot"].
// configDir is passed as --config-dir so certificates land in
// <configDir>/live/<domain>; empty keeps certbot's own default.
func NewProvisioner(executor out.CommandExecutor, command []string, configDir string) *Provisioner {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &Provisioner{executor: executor, command: command, configDir: configDir}
}

// Obtain runs certbot certonly for req.Domain. Only the exit status is
// meaningful; certbot writes the certificate under its live directory.
func (p *Provisioner) Obtain(ctx context.Context, req domain.CertRequest) (*out.ExecResult, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "certbot",
		logging.FieldAction:  "Obtain",
		logging.FieldDomain:  req.Domain,
	})

	args, err := Args(req, p.configDir)
	if err != nil {
		return nil, err
	}

	logging.FromCtx(ctx).Info().Msg("requesting certificate")

	cmd := append(append([]string(nil), p.command...), args...)
	return p.executor.Exec(ctx, cmd, nil)
}

// Args builds the non-interactive certbot arguments for req.
func Args(req domain.CertRequest, configDir string) ([]string, error) {
	if err := domain.ValidateDomain(req.Domain); err != nil {
		return nil, err
	}
	if req.Webroot == "" {
		return nil, fmt.Errorf("challenge webroot is required")
	}
	if req.KeySize <= 0 {
		return nil, fmt.Errorf("invalid key size %d", req.KeySize)
	}

	args := []string{
		"certonly",
		"--webroot",
		"-w", req.Webroot,
		"-d", req.Domain,
	}
	if configDir != "" {
		args = append(args, "--config-dir", configDir)
	}
	if req.Email != "" {
		args = append(args, "--email", req.Email)
	} else {
		args = append(args, "--register-unsafely-without-email")
	}
	args = append(args,
		"--rsa-key-size", strconv.Itoa(req.KeySize),
		"--agree-tos",
		"--no-eff-email",
		"--non-interactive",
		"--keep-until-expiring",
	)
	if req.Staging {
		args = append(args, "--staging")
	}
	return args, nil
}
