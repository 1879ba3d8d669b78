// Package cron installs the periodic web server reload in the operator's
// crontab so renewed certificates are picked up.
package cron

import (
	"context"
	"strings"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

// Service implements the CronService interface.
type Service struct {
	crontab out.Crontab
	entry   domain.CronEntry
}

// NewService creates a cron service that manages entry.
func NewService(crontab out.Crontab, entry domain.CronEntry) *Service {
	return &Service{crontab: crontab, entry: entry}
}

// Entry returns the crontab line the service installs.
func (s *Service) Entry() string {
	return s.entry.Line()
}

// EnsureReloadJob appends the reload entry unless an identical line is
// already present. It reports whether the crontab was changed.
func (s *Service) EnsureReloadJob(ctx context.Context) (bool, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "usecase",
		logging.FieldUseCase: "EnsureReloadJob",
	})
	log := logging.FromCtx(ctx)

	current, err := s.crontab.Read(ctx)
	if err != nil {
		return false, logging.WrapErr(ctx, err, "failed to read crontab")
	}

	line := s.entry.Line()
	if hasLine(current, line) {
		log.Info().Str("entry", line).Msg("reload job already installed")
		return false, nil
	}

	updated := current
	if updated != "" && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += line + "\n"

	if err := s.crontab.Write(ctx, updated); err != nil {
		return false, logging.WrapErr(ctx, err, "failed to write crontab")
	}

	log.Info().Str("entry", line).Msg("reload job installed")
	return true, nil
}

func hasLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
