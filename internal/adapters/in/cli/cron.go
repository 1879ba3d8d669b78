package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newSetupCronCmd(r *runner) *cobra.Command {
	var schedule, command string

	cmd := &cobra.Command{
		Use:   "setup-cron",
		Short: "Install a crontab entry that reloads nginx periodically",
		Long: `Append "<schedule> <command>" to the current user's crontab unless an
identical line is already present. The default command is this executable
followed by "reload", so renewed certificates are picked up.

--schedule accepts a five-field cron expression or one of hourly, daily,
weekly and monthly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, d *Deps) error {
				svc, err := d.Cron(schedule, command)
				if err != nil {
					return err
				}

				installed, err := svc.EnsureReloadJob(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if !installed {
					return cliWriteLine(w, cliRenderInfo("Cron entry already present"))
				}
				if err := cliWriteLine(w, cliRenderSuccess("Cron entry installed")); err != nil {
					return err
				}
				return cliWriteLine(w, cliRenderMeta("  entry:", svc.Entry()))
			})
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (default from cron.schedule)")
	cmd.Flags().StringVar(&command, "command", "", "Command to run (default: <sitectl> reload)")

	return cmd
}
