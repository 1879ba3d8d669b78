package cli

import (
	"errors"

	"github.com/bnema/sitectl/internal/domain"
)

// ExitCode maps an error returned by a command to the process exit status.
// Failed web server validation and reload propagate the external exit
// code; every other failure exits with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var perr *domain.ProcessError
	if errors.As(err, &perr) && perr.ExitCode > 0 &&
		(errors.Is(err, domain.ErrValidationFailed) || errors.Is(err, domain.ErrReloadFailed)) {
		return perr.ExitCode
	}
	return 1
}
