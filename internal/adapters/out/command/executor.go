// Package command runs local subprocesses for the web server controller,
// the certbot provisioner and the crontab adapter.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/logging"
)

// Executor runs commands on the local host.
type Executor struct {
	prefix []string
	env    []string
}

// NewExecutor creates an executor. Every command is run as prefix + cmd,
// which allows e.g. "docker compose exec -T nginx" in front of "nginx -t".
func NewExecutor(prefix ...string) *Executor {
	return &Executor{prefix: append([]string(nil), prefix...)}
}

// WithEnv returns a copy of the executor that appends env to the
// inherited environment of every command.
func (e *Executor) WithEnv(env ...string) *Executor {
	return &Executor{
		prefix: e.prefix,
		env:    append(append([]string(nil), e.env...), env...),
	}
}

// Exec runs cmd and waits for it to finish.
func (e *Executor) Exec(ctx context.Context, cmd []string, stdin io.Reader) (*out.ExecResult, error) {
	argv := append(append([]string(nil), e.prefix...), cmd...)
	if len(argv) == 0 {
		return nil, fmt.Errorf("command is required")
	}

	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "command",
		logging.FieldAction:  "Exec",
		logging.FieldCommand: strings.Join(argv, " "),
	})
	log := logging.FromCtx(ctx)

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(e.env) > 0 {
		c.Env = append(c.Environ(), e.env...)
	}
	c.Stdin = stdin

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &out.ExecResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, logging.WrapErr(ctx, err, "failed to run command")
	}

	log.Debug().Int(logging.FieldExitCode, result.ExitCode).Msg("command finished")
	return result, nil
}
