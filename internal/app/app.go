// Package app provides the application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	// Adapters - Output
	"github.com/bnema/sitectl/internal/adapters/out/acme"
	"github.com/bnema/sitectl/internal/adapters/out/certbot"
	"github.com/bnema/sitectl/internal/adapters/out/command"
	"github.com/bnema/sitectl/internal/adapters/out/crontab"
	"github.com/bnema/sitectl/internal/adapters/out/docker"
	"github.com/bnema/sitectl/internal/adapters/out/filesystem"
	"github.com/bnema/sitectl/internal/adapters/out/nginx"

	// Boundaries
	"github.com/bnema/sitectl/internal/boundaries/in"
	"github.com/bnema/sitectl/internal/boundaries/out"

	// Domain
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"

	// Use cases
	"github.com/bnema/sitectl/internal/usecase/cron"
	"github.com/bnema/sitectl/internal/usecase/site"
)

// App holds the wired services for one CLI invocation.
type App struct {
	Config     Config
	ConfigFile string // empty when no config file was found
	Log        zerolog.Logger

	Sites in.SiteService
	Proxy in.ProxyService

	local    *command.Executor
	cleanups []func()
}

// New loads configuration, sets up logging and wires every adapter.
func New(opts Options) (*App, error) {
	v, cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	log, logCleanup, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		ConfigFile: v.ConfigFileUsed(),
		Log:        log,
		local:      command.NewExecutor(),
		cleanups:   []func(){logCleanup},
	}

	if err := a.wire(); err != nil {
		a.Close()
		return nil, err
	}

	log.Debug().
		Str("config", a.ConfigFile).
		Str("sites_dir", cfg.Sites.Dir).
		Str("provisioner", cfg.ACME.Provisioner).
		Str("executor", cfg.Proxy.Executor).
		Msg("application wired")

	return a, nil
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithCtx(ctx, a.Log)
}

// Close releases the Docker client and log file.
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

func (a *App) wire() error {
	cfg := a.Config

	store := filesystem.NewSiteStore(cfg.Sites.Dir)

	renderer, err := site.NewRenderer(site.RenderConfig{
		HTTPPort:      cfg.Render.HTTPPort,
		HTTPSPort:     cfg.Render.HTTPSPort,
		IPv6:          cfg.Render.IPv6,
		ChallengeRoot: cfg.Render.ChallengeRoot,
		CustomMount:   cfg.Certs.CustomMount,
		ACMELiveDir:   cfg.ACME.LiveDir,
	})
	if err != nil {
		return fmt.Errorf("invalid render configuration: %w", err)
	}

	proxyExec, err := a.proxyExecutor()
	if err != nil {
		return err
	}

	svc := site.NewService(
		store,
		filesystem.NewCredentialStore(cfg.Certs.CustomDir),
		a.provisioner(),
		nginx.NewController(proxyExec, cfg.Proxy.TestCommand, cfg.Proxy.ReloadCommand),
		renderer,
		site.Config{
			Webroot: cfg.ACME.Webroot,
			Email:   cfg.ACME.Email,
			KeySize: cfg.ACME.KeySize,
			Staging: cfg.ACME.Staging,
		},
	)

	a.Sites = svc
	a.Proxy = svc
	return nil
}

// proxyExecutor returns where nginx commands run: inside the container via
// the Docker API, or locally behind an optional prefix.
func (a *App) proxyExecutor() (out.CommandExecutor, error) {
	cfg := a.Config.Proxy
	if cfg.Executor == ExecutorCommand {
		return command.NewExecutor(cfg.ExecPrefix...), nil
	}

	runtime, err := docker.NewRuntime()
	if err != nil {
		return nil, err
	}
	a.cleanups = append(a.cleanups, func() {
		if err := runtime.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("failed to close Docker client")
		}
	})
	return docker.NewContainerExecutor(runtime, cfg.Container), nil
}

func (a *App) provisioner() out.CertProvisioner {
	cfg := a.Config.ACME
	if cfg.Provisioner == ProvisionerLego {
		return acme.NewProvisioner(acme.Config{
			DirectoryURL: cfg.DirectoryURL,
			LiveDir:      cfg.HostLiveDir,
			AccountDir:   cfg.AccountDir,
		})
	}
	return certbot.NewProvisioner(a.local, cfg.Command, cfg.ConfigDir)
}

// CronService returns the service that installs the reload job. Empty
// arguments fall back to the configured schedule and command.
func (a *App) CronService(schedule, cmd string) (in.CronService, error) {
	if schedule == "" {
		schedule = a.Config.Cron.Schedule
	}
	if cmd == "" {
		cmd = a.Config.Cron.Command
	}
	if cmd == "" {
		derived, err := a.reloadCommand()
		if err != nil {
			return nil, err
		}
		cmd = derived
	}

	entry, err := domain.NewCronEntry(schedule, cmd)
	if err != nil {
		return nil, err
	}
	// crontab's "no crontab for" notice is matched verbatim.
	return cron.NewService(crontab.New(a.local.WithEnv("LC_ALL=C"), ""), entry), nil
}

// reloadCommand is "<absolute executable> reload", plus --config when a
// config file was used.
func (a *App) reloadCommand() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate sitectl executable: %w", err)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return "", err
	}

	parts := []string{shellQuote(exe), "reload"}
	if a.ConfigFile != "" {
		cfgPath, err := filepath.Abs(a.ConfigFile)
		if err != nil {
			return "", err
		}
		parts = append(parts, "--config", shellQuote(cfgPath))
	}
	return strings.Join(parts, " "), nil
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
