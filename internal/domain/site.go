package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Mode selects how TLS is configured for a site.
type Mode string

const (
	// ModeHTTP serves plaintext only.
	ModeHTTP Mode = "http"
	// ModeAuto obtains a certificate from the ACME provisioner.
	ModeAuto Mode = "auto"
	// ModeCustom uses a certificate and key supplied by the operator.
	ModeCustom Mode = "custom"
	// ModeUnknown is reported for stored files without a readable header.
	ModeUnknown Mode = "unknown"
)

// Modes lists the modes accepted by ParseMode.
var Modes = []Mode{ModeHTTP, ModeAuto, ModeCustom}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	names := make([]string, 0, len(Modes))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
		names = append(names, string(known))
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidMode, s, strings.Join(names, ", "))
}

// TLS reports whether the mode ends with a secure listener.
func (m Mode) TLS() bool {
	return m == ModeAuto || m == ModeCustom
}

func (m Mode) String() string {
	return string(m)
}

// Site is a domain's stored reverse-proxy configuration.
type Site struct {
	Domain  string `json:"domain" yaml:"domain"`
	Backend string `json:"backend" yaml:"backend"`
	Mode    Mode   `json:"mode" yaml:"mode"`
	Config  string `json:"-" yaml:"-"`
}

// SiteRequest carries the operator input for adding a site.
type SiteRequest struct {
	Domain  string `validate:"required,max=253,fqdn,nginxsafe"`
	Backend string `validate:"required,http_url,nginxsafe"`
	Mode    Mode
}

// NewSiteRequest normalizes and validates the raw CLI arguments.
func NewSiteRequest(domainName, backend, mode string) (SiteRequest, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return SiteRequest{}, err
	}
	req := SiteRequest{
		Domain:  NormalizeDomain(domainName),
		Backend: strings.TrimSpace(backend),
		Mode:    m,
	}
	if err := req.Validate(); err != nil {
		return SiteRequest{}, err
	}
	return req, nil
}

// NormalizeDomain lower-cases and trims a domain name.
func NormalizeDomain(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks that every value is safe to substitute into a server block.
func (r SiteRequest) Validate() error {
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	if err := ValidateDomain(r.Domain); err != nil {
		return err
	}

	if err := validate().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Backend" {
			return fmt.Errorf("%w: %q (%s)", ErrInvalidBackend, r.Backend, verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidBackend, err)
	}

	u, err := url.Parse(r.Backend)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, r.Backend)
	}
	return nil
}

// ValidateDomain checks a single domain name, as used by remove and show.
func ValidateDomain(name string) error {
	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, name)
	}
	if err := validate().Var(name, "required,max=253,fqdn,nginxsafe"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, name)
	}
	return nil
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation("nginxsafe", func(fl validator.FieldLevel) bool {
			return IsNginxSafe(fl.Field().String())
		})
		_ = v.RegisterValidation("crontab", isCrontabSchedule)
		validateInst = v
	})
	return validateInst
}

// IsNginxSafe reports whether s can be placed inside an nginx directive
// without changing its structure.
func IsNginxSafe(s string) bool {
	if strings.ContainsAny(s, ";{}\"'$#\\") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// CertRequest describes a certificate to obtain from the ACME provisioner.
type CertRequest struct {
	Domain  string
	Webroot string
	Email   string
	KeySize int
	Staging bool
}
