package out

import (
	"context"

	"github.com/bnema/sitectl/internal/domain"
)

// CertProvisioner obtains a certificate from an ACME certificate authority.
// Only the outcome matters to callers; certificate files are written to the
// provisioner's standard location for the domain.
type CertProvisioner interface {
	Obtain(ctx context.Context, req domain.CertRequest) (*ExecResult, error)
}
