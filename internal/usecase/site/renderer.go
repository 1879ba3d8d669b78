package site

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/bnema/sitectl/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	plainTemplate  = "plain.conf.tmpl"
	secureTemplate = "secure.conf.tmpl"
)

// RenderConfig holds the server-side values substituted into every site.
type RenderConfig struct {
	HTTPPort      int
	HTTPSPort     int
	IPv6          bool
	ChallengeRoot string // challenge webroot as seen by the web server
	CustomMount   string // custom certificate directory as seen by the web server
	ACMELiveDir   string // ACME live directory as seen by the web server
}

// TLSFiles are the certificate paths written into a secure server block.
type TLSFiles struct {
	Certificate string
	Key         string
}

// renderParams is the complete set of values a template can reference.
type renderParams struct {
	Header         string
	Domain         string
	Backend        string
	HTTPPort       int
	HTTPSPort      int
	IPv6           bool
	ChallengeRoot  string
	Certificate    string
	CertificateKey string
}

// Renderer produces nginx server blocks from a fixed template set.
type Renderer struct {
	cfg  RenderConfig
	tmpl *template.Template
}

// NewRenderer parses the embedded templates and checks the configured paths.
func NewRenderer(cfg RenderConfig) (*Renderer, error) {
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}
	if cfg.HTTPSPort <= 0 || cfg.HTTPSPort > 65535 {
		return nil, fmt.Errorf("invalid https port %d", cfg.HTTPSPort)
	}
	for name, value := range map[string]string{
		"challenge root":      cfg.ChallengeRoot,
		"custom cert mount":   cfg.CustomMount,
		"acme live directory": cfg.ACMELiveDir,
	} {
		if value == "" || !domain.IsNginxSafe(value) {
			return nil, fmt.Errorf("invalid %s %q", name, value)
		}
	}

	tmpl, err := template.New("site").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse site templates: %w", err)
	}

	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

// Render returns the configuration text for req. A nil tls renders the
// plaintext form; otherwise a redirecting plaintext server and a secure
// server using tls are rendered.
func (r *Renderer) Render(req domain.SiteRequest, tls *TLSFiles) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	params := renderParams{
		Header:        domain.SiteHeader(req),
		Domain:        req.Domain,
		Backend:       req.Backend,
		HTTPPort:      r.cfg.HTTPPort,
		HTTPSPort:     r.cfg.HTTPSPort,
		IPv6:          r.cfg.IPv6,
		ChallengeRoot: r.cfg.ChallengeRoot,
	}

	name := plainTemplate
	if tls != nil {
		if !domain.IsNginxSafe(tls.Certificate) || !domain.IsNginxSafe(tls.Key) || tls.Certificate == "" || tls.Key == "" {
			return "", fmt.Errorf("%w: unusable certificate paths for %s", domain.ErrMissingCredential, req.Domain)
		}
		params.Certificate = tls.Certificate
		params.CertificateKey = tls.Key
		name = secureTemplate
	}

	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, params); err != nil {
		return "", fmt.Errorf("failed to render %s for %s: %w", name, req.Domain, err)
	}
	return b.String(), nil
}

// TLSFilesFor returns the certificate paths the web server uses for req's mode.
// It returns nil for plaintext sites.
func (r *Renderer) TLSFilesFor(req domain.SiteRequest) *TLSFiles {
	switch req.Mode {
	case domain.ModeAuto:
		dir := path.Join(r.cfg.ACMELiveDir, req.Domain)
		return &TLSFiles{
			Certificate: path.Join(dir, "fullchain.pem"),
			Key:         path.Join(dir, "privkey.pem"),
		}
	case domain.ModeCustom:
		return &TLSFiles{
			Certificate: path.Join(r.cfg.CustomMount, req.Domain+".crt"),
			Key:         path.Join(r.cfg.CustomMount, req.Domain+".key"),
		}
	}
	return nil
}
