// Package acme obtains certificates in-process with the lego ACME client,
// answering HTTP-01 challenges through the shared webroot.
package acme

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/http/webroot"
	"github.com/go-acme/lego/v4/registration"
	"github.com/natefinch/atomic"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

// Config controls where lego keeps its account key and writes certificates.
type Config struct {
	DirectoryURL string // empty means Let's Encrypt production
	LiveDir      string // host directory receiving <domain>/fullchain.pem and privkey.pem
	AccountDir   string // host directory holding the account key
}

// user implements registration.User.
type user struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *user) GetEmail() string                        { return u.email }
func (u *user) GetRegistration() *registration.Resource { return u.registration }
func (u *user) GetPrivateKey() crypto.PrivateKey        { return u.key }

// Provisioner implements out.CertProvisioner with lego.
type Provisioner struct {
	config Config
}

// NewProvisioner creates a lego-backed provisioner.
func NewProvisioner(config Config) *Provisioner {
	return &Provisioner{config: config}
}

// Obtain requests a certificate for req.Domain. ACME failures are reported
// as an unsuccessful result with the error text on stderr; local I/O
// failures are returned as errors.
func (p *Provisioner) Obtain(ctx context.Context, req domain.CertRequest) (*out.ExecResult, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "lego",
		logging.FieldAction:  "Obtain",
		logging.FieldDomain:  req.Domain,
	})
	log := logging.FromCtx(ctx)

	if err := domain.ValidateDomain(req.Domain); err != nil {
		return nil, err
	}
	keyType, err := keyTypeFor(req.KeySize)
	if err != nil {
		return nil, err
	}

	accountKey, err := loadOrCreateAccountKey(p.accountKeyPath(req.Email))
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to load ACME account key")
	}
	u := &user{email: req.Email, key: accountKey}

	cfg := lego.NewConfig(u)
	cfg.CADirURL = p.directoryURL(req.Staging)
	cfg.Certificate.KeyType = keyType

	client, err := lego.NewClient(cfg)
	if err != nil {
		return failed(err), nil
	}

	provider, err := webroot.NewHTTPProvider(req.Webroot)
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to prepare challenge webroot")
	}
	if err := client.Challenge.SetHTTP01Provider(provider); err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to set HTTP-01 provider")
	}

	reg, err := client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		log.Error().Err(err).Msg("ACME registration failed")
		return failed(err), nil
	}
	u.registration = reg

	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{req.Domain},
		Bundle:  true,
	})
	if err != nil {
		log.Error().Err(err).Msg("ACME order failed")
		return failed(err), nil
	}

	dir := filepath.Join(p.config.LiveDir, req.Domain)
	if err := writeCertificate(dir, res); err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to store certificate")
	}

	log.Info().Str("path", dir).Msg("certificate stored")
	return &out.ExecResult{Stdout: []byte("certificate stored in " + dir + "\n")}, nil
}

func (p *Provisioner) directoryURL(staging bool) string {
	if staging {
		return lego.LEDirectoryStaging
	}
	if p.config.DirectoryURL != "" {
		return p.config.DirectoryURL
	}
	return lego.LEDirectoryProduction
}

func (p *Provisioner) accountKeyPath(email string) string {
	name := "default"
	if email != "" {
		name = strings.NewReplacer("@", "_at_", "/", "_").Replace(email)
	}
	return filepath.Join(p.config.AccountDir, name+".key")
}

func failed(err error) *out.ExecResult {
	return &out.ExecResult{ExitCode: 1, Stderr: []byte(err.Error() + "\n")}
}

func keyTypeFor(size int) (certcrypto.KeyType, error) {
	switch size {
	case 2048:
		return certcrypto.RSA2048, nil
	case 3072:
		return certcrypto.RSA3072, nil
	case 4096:
		return certcrypto.RSA4096, nil
	case 8192:
		return certcrypto.RSA8192, nil
	}
	return "", fmt.Errorf("unsupported RSA key size %d", size)
}

// loadOrCreateAccountKey reads a PEM key, generating and saving a P-256
// key on first use.
func loadOrCreateAccountKey(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := certcrypto.ParsePEMPrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("invalid account key %s: %w", path, err)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := writeFile(path, certcrypto.PEMEncode(key), 0600); err != nil {
		return nil, err
	}
	return key, nil
}

// writeCertificate lays out files the way certbot does, so the rendered
// configuration works with either provisioner.
func writeCertificate(dir string, res *certificate.Resource) error {
	if len(res.Certificate) == 0 || len(res.PrivateKey) == 0 {
		return fmt.Errorf("certificate response for %s is incomplete", res.Domain)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	files := []struct {
		name string
		data []byte
		mode os.FileMode
	}{
		{"fullchain.pem", res.Certificate, 0644},
		{"privkey.pem", res.PrivateKey, 0600},
	}
	if len(res.IssuerCertificate) > 0 {
		files = append(files, struct {
			name string
			data []byte
			mode os.FileMode
		}{"chain.pem", res.IssuerCertificate, 0644})
	}

	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.data, f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}
