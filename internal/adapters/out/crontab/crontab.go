// Package crontab reads and replaces the invoking user's crontab through
// the crontab binary.
package crontab

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/logging"
)

// DefaultBinary is the crontab program looked up on PATH.
const DefaultBinary = "crontab"

// Crontab implements out.Crontab.
type Crontab struct {
	executor out.CommandExecutor
	binary   string
}

// New creates a crontab adapter. An empty binary selects DefaultBinary.
func New(executor out.CommandExecutor, binary string) *Crontab {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Crontab{executor: executor, binary: binary}
}

// Read returns the current crontab. A user without a crontab reads as empty.
func (c *Crontab) Read(ctx context.Context) (string, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "crontab",
		logging.FieldAction:  "Read",
	})

	res, err := c.executor.Exec(ctx, []string{c.binary, "-l"}, nil)
	if err != nil {
		return "", logging.WrapErr(ctx, err, "failed to run crontab -l")
	}
	if res.Success() {
		return string(res.Stdout), nil
	}
	if strings.Contains(strings.ToLower(string(res.Stderr)), "no crontab for") {
		logging.FromCtx(ctx).Debug().Msg("no existing crontab")
		return "", nil
	}
	return "", fmt.Errorf("crontab -l exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Output()))
}

// Write replaces the crontab with content.
func (c *Crontab) Write(ctx context.Context, content string) error {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "crontab",
		logging.FieldAction:  "Write",
	})

	res, err := c.executor.Exec(ctx, []string{c.binary, "-"}, strings.NewReader(content))
	if err != nil {
		return logging.WrapErr(ctx, err, "failed to run crontab -")
	}
	if !res.Success() {
		return fmt.Errorf("crontab - exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Output()))
	}
	return nil
}
