package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/lego"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bnema/sitectl/internal/adapters/out/certbot"
	"github.com/bnema/sitectl/internal/adapters/out/nginx"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. SITECTL_SITES_DIR.
const EnvPrefix = "SITECTL"

// Provisioner and executor backends.
const (
	ProvisionerCertbot = "certbot"
	ProvisionerLego    = "lego"

	ExecutorDocker  = "docker"
	ExecutorCommand = "command"
)

// Config holds the application configuration.
type Config struct {
	Sites struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"sites"`

	Render struct {
		HTTPPort      int    `mapstructure:"http_port"`
		HTTPSPort     int    `mapstructure:"https_port"`
		IPv6          bool   `mapstructure:"ipv6"`
		ChallengeRoot string `mapstructure:"challenge_root"` // path inside the web server
	} `mapstructure:"render"`

	Certs struct {
		CustomDir   string `mapstructure:"custom_dir"`   // host path checked for <domain>.crt/.key
		CustomMount string `mapstructure:"custom_mount"` // same directory inside the web server
	} `mapstructure:"certs"`

	ACME struct {
		Provisioner  string   `mapstructure:"provisioner"` // "certbot" or "lego"
		Command      []string `mapstructure:"command"`
		Webroot      string   `mapstructure:"webroot"`
		Email        string   `mapstructure:"email"`
		KeySize      int      `mapstructure:"key_size"`
		Staging      bool     `mapstructure:"staging"`
		LiveDir      string   `mapstructure:"live_dir"`      // path inside the web server
		HostLiveDir  string   `mapstructure:"host_live_dir"` // certificate output on the host
		ConfigDir    string   `mapstructure:"config_dir"`    // certbot --config-dir, parent of host_live_dir when empty
		AccountDir   string   `mapstructure:"account_dir"`
		DirectoryURL string   `mapstructure:"directory_url"`
	} `mapstructure:"acme"`

	Proxy struct {
		Executor      string   `mapstructure:"executor"` // "docker" or "command"
		Container     string   `mapstructure:"container"`
		ExecPrefix    []string `mapstructure:"exec_prefix"`
		TestCommand   []string `mapstructure:"test_command"`
		ReloadCommand []string `mapstructure:"reload_command"`
	} `mapstructure:"proxy"`

	Cron struct {
		Schedule string `mapstructure:"schedule"`
		Command  string `mapstructure:"command"`
	} `mapstructure:"cron"`

	Logging logging.Config `mapstructure:"logging"`
}

// Options are the command line overrides applied on top of the config file
// and environment.
type Options struct {
	ConfigPath string
	EnvFile    string
	SitesDir   string
	LogLevel   string
}

// LoadConfig reads defaults, the .env file, the config file and SITECTL_*
// variables, in increasing priority, then applies opts.
func LoadConfig(opts Options) (*viper.Viper, Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, Config{}, err
	}

	v := viper.New()
	if err := loadConfig(v, opts.ConfigPath); err != nil {
		return nil, Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.SitesDir != "" {
		v.Set("sites.dir", opts.SitesDir)
	}
	if opts.LogLevel != "" {
		v.Set("logging.level", opts.LogLevel)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeConfig(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, Config{}, err
	}

	return v, cfg, nil
}

// loadEnvFile loads path (".env" when empty) without overriding variables
// already set. A missing file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig loads configuration from file and sets defaults.
func loadConfig(v *viper.Viper, configPath string) error {
	v.SetDefault("sites.dir", "./nginx/conf.d")
	v.SetDefault("render.http_port", 80)
	v.SetDefault("render.https_port", 443)
	v.SetDefault("render.ipv6", false)
	v.SetDefault("render.challenge_root", "/var/www/certbot")
	v.SetDefault("certs.custom_dir", "./nginx/ssl")
	v.SetDefault("certs.custom_mount", "/etc/nginx/ssl")
	v.SetDefault("acme.provisioner", ProvisionerCertbot)
	v.SetDefault("acme.command", certbot.DefaultCommand)
	v.SetDefault("acme.webroot", "./certbot/www")
	v.SetDefault("acme.email", "")
	v.SetDefault("acme.key_size", 4096)
	v.SetDefault("acme.staging", false)
	v.SetDefault("acme.live_dir", "/etc/letsencrypt/live")
	v.SetDefault("acme.host_live_dir", "./certbot/conf/live")
	v.SetDefault("acme.config_dir", "")
	v.SetDefault("acme.account_dir", "./certbot/accounts")
	v.SetDefault("acme.directory_url", lego.LEDirectoryProduction)
	v.SetDefault("proxy.executor", ExecutorDocker)
	v.SetDefault("proxy.container", "nginx")
	v.SetDefault("proxy.exec_prefix", []string{})
	v.SetDefault("proxy.test_command", nginx.DefaultTestCommand)
	v.SetDefault("proxy.reload_command", nginx.DefaultReloadCommand)
	v.SetDefault("cron.schedule", domain.DefaultReloadSchedule)
	v.SetDefault("cron.command", "") // derived from the executable path when empty
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size", 10)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("logging.file.compress", true)

	ConfigureViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}

func normalizeConfig(cfg *Config) {
	cfg.ACME.Provisioner = strings.ToLower(strings.TrimSpace(cfg.ACME.Provisioner))
	cfg.Proxy.Executor = strings.ToLower(strings.TrimSpace(cfg.Proxy.Executor))
	cfg.ACME.Command = splitCommand(cfg.ACME.Command)
	cfg.Proxy.ExecPrefix = splitCommand(cfg.Proxy.ExecPrefix)
	cfg.Proxy.TestCommand = splitCommand(cfg.Proxy.TestCommand)
	cfg.Proxy.ReloadCommand = splitCommand(cfg.Proxy.ReloadCommand)

	// certbot writes into <config-dir>/live/<domain>.
	if cfg.ACME.ConfigDir == "" && cfg.ACME.HostLiveDir != "" {
		cfg.ACME.ConfigDir = filepath.Dir(filepath.Clean(cfg.ACME.HostLiveDir))
	}

	// Staging always talks to the staging directory.
	if cfg.ACME.Staging {
		cfg.ACME.DirectoryURL = lego.LEDirectoryStaging
	}
}

// splitCommand turns a single whitespace-separated element, as produced by
// an environment variable, into an argument list.
func splitCommand(cmd []string) []string {
	if len(cmd) == 1 && strings.ContainsAny(cmd[0], " \t") {
		return strings.Fields(cmd[0])
	}
	return cmd
}

func validateConfig(cfg Config) error {
	switch cfg.ACME.Provisioner {
	case ProvisionerCertbot:
		if len(cfg.ACME.Command) == 0 {
			return fmt.Errorf("acme.command must not be empty")
		}
		if filepath.Join(cfg.ACME.ConfigDir, "live") != filepath.Clean(cfg.ACME.HostLiveDir) {
			return fmt.Errorf("acme.host_live_dir %q must be %q for certbot", cfg.ACME.HostLiveDir, filepath.Join(cfg.ACME.ConfigDir, "live"))
		}
	case ProvisionerLego:
	default:
		return fmt.Errorf("unknown acme.provisioner %q (expected certbot or lego)", cfg.ACME.Provisioner)
	}

	switch cfg.Proxy.Executor {
	case ExecutorDocker:
		if cfg.Proxy.Container == "" {
			return fmt.Errorf("proxy.container is required for the docker executor")
		}
	case ExecutorCommand:
	default:
		return fmt.Errorf("unknown proxy.executor %q (expected docker or command)", cfg.Proxy.Executor)
	}

	if len(cfg.Proxy.TestCommand) == 0 || len(cfg.Proxy.ReloadCommand) == 0 {
		return fmt.Errorf("proxy.test_command and proxy.reload_command must not be empty")
	}
	if cfg.Sites.Dir == "" {
		return fmt.Errorf("sites.dir must not be empty")
	}
	if cfg.ACME.Webroot == "" {
		return fmt.Errorf("acme.webroot must not be empty")
	}
	return nil
}
