package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/sitectl/internal/domain"
)

func newTestConfigCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "test-config",
		Short: "Run the nginx configuration test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				res, err := d.Proxy.TestConfig(ctx)
				if err != nil {
					return err
				}
				forwardOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), res.Stdout, res.Stderr)
				if !res.Success() {
					return &domain.ProcessError{Op: "test-config", ExitCode: res.ExitCode, Err: domain.ErrValidationFailed}
				}
				return nil
			})
		},
	}
}

func newReloadCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload nginx",
		Long: `Reload nginx so it picks up changed configuration and renewed
certificates. setup-cron schedules this command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				res, err := d.Proxy.Reload(ctx)
				if err != nil {
					return err
				}
				forwardOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), res.Stdout, res.Stderr)
				if !res.Success() {
					return &domain.ProcessError{Op: "reload", ExitCode: res.ExitCode, Err: domain.ErrReloadFailed}
				}
				return nil
			})
		},
	}
}
