// Package docker runs commands inside the web server container using the Docker API.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/logging"
)

const execPollInterval = 50 * time.Millisecond

// Runtime talks to the Docker Engine API.
type Runtime struct {
	client *client.Client
}

// NewRuntime creates a new Docker runtime instance from the environment
// (DOCKER_HOST, DOCKER_CERT_PATH, ...).
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Runtime{
		client: cli,
	}, nil
}

// Close releases the client's idle connections.
func (r *Runtime) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// ExecInContainer runs cmd inside containerID and waits for it to exit.
func (r *Runtime) ExecInContainer(ctx context.Context, containerID string, cmd []string, stdin io.Reader) (*out.ExecResult, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("command is required")
	}

	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldLayer:   "adapter",
		logging.FieldAdapter: "docker",
		logging.FieldAction:  "ExecInContainer",
		"container":          containerID,
		logging.FieldCommand: strings.Join(cmd, " "),
	})
	log := logging.FromCtx(ctx)

	created, err := r.client.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdin:  stdin != nil,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to create exec")
	}

	attach, err := r.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to attach to exec")
	}
	defer attach.Close()

	if stdin != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, stdin)
			_ = attach.CloseWrite()
		}()
	}

	stdout, stderr, err := parseExecOutput(attach.Reader)
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to read exec output")
	}

	exitCode, err := r.waitExec(ctx, created.ID)
	if err != nil {
		return nil, logging.WrapErr(ctx, err, "failed to inspect exec")
	}

	log.Debug().Int(logging.FieldExitCode, exitCode).Msg("exec finished")
	return &out.ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}, nil
}

// waitExec polls until the exec process has exited. The output stream
// closes slightly before the daemon records the exit code.
func (r *Runtime) waitExec(ctx context.Context, execID string) (int, error) {
	for {
		inspect, err := r.client.ContainerExecInspect(ctx, execID)
		if err != nil {
			return 0, err
		}
		if !inspect.Running {
			return inspect.ExitCode, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(execPollInterval):
		}
	}
}

// parseExecOutput splits Docker's multiplexed exec stream into stdout and stderr.
func parseExecOutput(r io.Reader) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, r); err != nil {
		return nil, nil, err
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// ContainerExecutor runs every command inside one container.
type ContainerExecutor struct {
	runtime   *Runtime
	container string
}

// NewContainerExecutor binds runtime to the named container.
func NewContainerExecutor(runtime *Runtime, containerName string) *ContainerExecutor {
	return &ContainerExecutor{runtime: runtime, container: containerName}
}

// Exec implements out.CommandExecutor.
func (e *ContainerExecutor) Exec(ctx context.Context, cmd []string, stdin io.Reader) (*out.ExecResult, error) {
	return e.runtime.ExecInContainer(ctx, e.container, cmd, stdin)
}
