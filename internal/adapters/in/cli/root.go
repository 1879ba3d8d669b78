// Package cli implements the CLI adapter for sitectl.
// This package provides Cobra commands that delegate to the app layer.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/sitectl/internal/app"
	"github.com/bnema/sitectl/internal/boundaries/in"
	"github.com/bnema/sitectl/internal/logging"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(version, commit, date string) {
	Version = version
	Commit = commit
	BuildDate = date
}

// Deps are the services the commands drive.
type Deps struct {
	Sites   in.SiteService
	Proxy   in.ProxyService
	Cron    func(schedule, command string) (in.CronService, error)
	Context func(context.Context) context.Context
	Close   func()
}

// Loader builds Deps from the global flags.
type Loader func(opts app.Options) (*Deps, error)

func appLoader(opts app.Options) (*Deps, error) {
	a, err := app.New(opts)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Sites:   a.Sites,
		Proxy:   a.Proxy,
		Cron:    a.CronService,
		Context: a.Context,
		Close:   a.Close,
	}, nil
}

// runner loads dependencies lazily so that help and version never touch
// configuration.
type runner struct {
	load Loader
	opts app.Options
}

func (r *runner) run(cmd *cobra.Command, fn func(ctx context.Context, d *Deps) error) error {
	// Arguments were accepted; later errors are not usage errors.
	cmd.SilenceUsage = true

	d, err := r.load(r.opts)
	if err != nil {
		return err
	}
	if d.Close != nil {
		defer d.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d.Context != nil {
		ctx = d.Context(ctx)
	}
	ctx = logging.CtxWithFields(ctx, map[string]any{
		logging.FieldComponent: cmd.Name(),
	})
	return fn(ctx, d)
}

// NewRootCmd creates the root command for the sitectl CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(appLoader)
}

func newRootCmd(load Loader) *cobra.Command {
	r := &runner{load: load}

	rootCmd := &cobra.Command{
		Use:   "sitectl",
		Short: "Manage nginx reverse-proxy sites and their certificates",
		Long: `sitectl writes one nginx server block per domain, obtains certificates
through certbot or lego when asked, and validates and reloads nginx after
every change.

Configuration is read from sitectl.toml (., $XDG_CONFIG_HOME/sitectl,
~/.sitectl, /etc/sitectl), SITECTL_* environment variables and an optional
.env file.`,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&r.opts.ConfigPath, "config", "c", "", "Path to config file")
	flags.StringVar(&r.opts.EnvFile, "env-file", "", "Path to .env file (default ./.env)")
	flags.StringVar(&r.opts.SitesDir, "sites-dir", "", "Override the sites directory")
	flags.StringVar(&r.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAddCmd(r))
	rootCmd.AddCommand(newRemoveCmd(r))
	rootCmd.AddCommand(newListCmd(r))
	rootCmd.AddCommand(newShowCmd(r))
	rootCmd.AddCommand(newTestConfigCmd(r))
	rootCmd.AddCommand(newReloadCmd(r))
	rootCmd.AddCommand(newSetupCronCmd(r))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, Version)
				return
			}
			fmt.Fprintf(w, "sitectl %s\n", Version)
			fmt.Fprintf(w, "Commit: %s\n", Commit)
			fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")

	return cmd
}
