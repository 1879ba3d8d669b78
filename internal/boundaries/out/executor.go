// Package out defines output ports (interfaces) for infrastructure.
// These interfaces define the contract between use cases and driven adapters
// (filesystem, Docker, subprocesses, ACME clients).
package out

import (
	"context"
	"io"
)

// CommandExecutor runs a command to completion and reports its outcome.
// Implementations return an error only when the command could not be started
// or its outcome could not be read; a non-zero exit is a normal result.
type CommandExecutor interface {
	Exec(ctx context.Context, cmd []string, stdin io.Reader) (*ExecResult, error)
}

// ExecResult holds the result of executing a command.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the command exited with status 0.
func (r *ExecResult) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Output returns stderr followed by stdout, which is how nginx and certbot
// report their diagnostics.
func (r *ExecResult) Output() string {
	if r == nil {
		return ""
	}
	out := string(r.Stderr)
	if len(r.Stdout) > 0 {
		if out != "" && out[len(out)-1] != '\n' {
			out += "\n"
		}
		out += string(r.Stdout)
	}
	return out
}
