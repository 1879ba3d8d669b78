package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business-level errors that can occur in the system.
// These errors are used across layers to communicate specific failure conditions.
var (
	// Request errors
	ErrInvalidMode    = errors.New("invalid mode")
	ErrInvalidDomain  = errors.New("invalid domain name")
	ErrInvalidBackend = errors.New("invalid backend URL")

	// Site errors
	ErrSiteNotFound      = errors.New("site not found")
	ErrMissingCredential = errors.New("certificate or key file not found")

	// External process errors
	ErrProvisionerFailed = errors.New("certificate provisioning failed")
	ErrValidationFailed  = errors.New("web server configuration test failed")
	ErrReloadFailed      = errors.New("web server reload failed")
)

// ProcessError reports an external command that ran but did not succeed.
// It unwraps to the sentinel given in Err so callers can use errors.Is.
type ProcessError struct {
	Op       string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s: %v (exit code %d)", e.Op, e.Err, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
