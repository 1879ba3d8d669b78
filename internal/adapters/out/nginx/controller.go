// Package nginx validates and reloads the nginx configuration through a command executor.
package nginx

import (
	"context"
	"fmt"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/logging"
)

// DefaultTestCommand and DefaultReloadCommand are the stock nginx invocations.
var (
	DefaultTestCommand   = []string{"nginx", "-t"}
	DefaultReloadCommand = []string{"nginx", "-s", "reload"}
)

// Controller implements out.ProxyController.
type Controller struct {
	executor      out.CommandExecutor
	testCommand   []string
	reloadCommand []string
}

// NewController creates a controller. Empty commands fall back to the defaults.
func NewController(executor out.CommandExecutor, testCommand, reloadCommand []string) *Controller {
	if len(testCommand) == 0 {
		testCommand = DefaultTestCommand
	}
	if len(reloadCommand) == 0 {
		reloadCommand = DefaultReloadCommand
	}
	return &Controller{
		executor:      executor,
		testCommand:   testCommand,
		reloadCommand: reloadCommand,
	}
}

// Validate runs the configuration test.
func (c *Controller) Validate(ctx context.Context) (*out.ExecResult, error) {
	return c.run(ctx, "Validate", c.testCommand)
}

// Reload signals nginx to reload its configuration.
func (c *Controller) Reload(ctx context.Context) (*out.ExecResult, error) {
	return c.run(ctx, "Reload", c.reloadCommand)
}

func (c *Controller) run(ctx context.Context, action string, cmd []string) (*out.ExecResult, error) {
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "nginx",
		logging.FieldAction:  action,
	})

	result, err := c.executor.Exec(ctx, cmd, nil)
	if err != nil {
		return nil, fmt.Errorf("nginx %s: %w", action, err)
	}

	log := logging.FromCtx(ctx)
	if result.Success() {
		log.Debug().Msg("nginx command succeeded")
	} else {
		log.Warn().Int(logging.FieldExitCode, result.ExitCode).Str("output", result.Output()).Msg("nginx command failed")
	}
	return result, nil
}
