package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bnema/sitectl/internal/app"
	"github.com/bnema/sitectl/internal/boundaries/in"
	"github.com/bnema/sitectl/internal/boundaries/in/mocks"
	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/domain"
	"github.com/bnema/sitectl/internal/logging"
)

type harness struct {
	sites  *mocks.MockSiteService
	proxy  *mocks.MockProxyService
	cron   *mocks.MockCronService
	opts   app.Options
	cronAt [2]string
	loaded bool
	closed bool
}

func newHarness() *harness {
	return &harness{
		sites: new(mocks.MockSiteService),
		proxy: new(mocks.MockProxyService),
		cron:  new(mocks.MockCronService),
	}
}

func (h *harness) load(opts app.Options) (*Deps, error) {
	h.opts = opts
	h.loaded = true
	return &Deps{
		Sites: h.sites,
		Proxy: h.proxy,
		Cron: func(schedule, command string) (in.CronService, error) {
			h.cronAt = [2]string{schedule, command}
			return h.cron, nil
		},
		Close: func() { h.closed = true },
	}, nil
}

func (h *harness) execute(args ...string) (string, string, error) {
	cmd := newRootCmd(h.load)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestAdd(t *testing.T) {
	h := newHarness()
	h.sites.On("Add", mock.Anything, domain.SiteRequest{
		Domain:  "example.com",
		Backend: "http://10.0.0.5:3000",
		Mode:    domain.ModeHTTP,
	}).Return(nil)

	stdout, _, err := h.execute("add", "Example.com", "http://10.0.0.5:3000", "http")
	require.NoError(t, err)
	assert.Contains(t, stdout, "example.com -> http://10.0.0.5:3000 (http)")
	assert.True(t, h.closed)
	h.sites.AssertExpectations(t)
}

func TestAdd_InvalidModeHasNoSideEffects(t *testing.T) {
	h := newHarness()

	_, _, err := h.execute("add", "example.com", "http://10.0.0.5:3000", "tls")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
	assert.Equal(t, 1, ExitCode(err))
	assert.False(t, h.loaded)
	h.sites.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestAdd_InvalidBackendSkipsLoader(t *testing.T) {
	h := newHarness()

	stdout, _, err := h.execute("add", "example.com", "10.0.0.5:3000", "http")
	assert.ErrorIs(t, err, domain.ErrInvalidBackend)
	assert.NotContains(t, stdout, "Usage:")
	assert.False(t, h.loaded)
}

func TestAdd_WrongArgCount(t *testing.T) {
	h := newHarness()

	stdout, _, err := h.execute("add", "example.com")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, stdout, "Usage:")
	assert.Empty(t, h.opts)
}

func TestAdd_ProvisionerFailureExitsOne(t *testing.T) {
	h := newHarness()
	h.sites.On("Add", mock.Anything, mock.Anything).Return(&domain.ProcessError{
		Op:       "certificate provisioning",
		ExitCode: 2,
		Err:      domain.ErrProvisionerFailed,
	})

	_, _, err := h.execute("add", "example.com", "http://10.0.0.5:3000", "auto")
	assert.ErrorIs(t, err, domain.ErrProvisionerFailed)
	assert.Equal(t, 1, ExitCode(err))
}

func TestAdd_DryRun(t *testing.T) {
	h := newHarness()
	h.sites.On("Preview", mock.Anything, mock.Anything).Return("server {}\n", nil)

	stdout, stderr, err := h.execute("add", "--dry-run", "example.com", "http://10.0.0.5:3000", "auto")
	require.NoError(t, err)
	assert.Equal(t, "server {}\n", stdout)
	assert.Contains(t, stderr, "auto mode")
	h.sites.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestRemove(t *testing.T) {
	h := newHarness()
	h.sites.On("Remove", mock.Anything, "example.com").Return(nil)

	stdout, _, err := h.execute("rm", "example.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Site removed: example.com")
}

func TestRemove_NotFound(t *testing.T) {
	h := newHarness()
	h.sites.On("Remove", mock.Anything, "nonexistent.com").
		Return(errors.New("site not found: nonexistent.com"))

	_, _, err := h.execute("remove", "nonexistent.com")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRemove_InvalidDomainSkipsLoader(t *testing.T) {
	h := newHarness()

	_, _, err := h.execute("remove", "../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)
	assert.False(t, h.loaded)
}

func TestRemove_NonexistentLeavesSitesDirAlone(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, ".config"))
	t.Setenv("SITECTL_PROXY_EXECUTOR", "command")
	sitesDir := filepath.Join(root, "conf.d")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--env-file", filepath.Join(root, "missing.env"),
		"--sites-dir", sitesDir,
		"remove", "nonexistent.com",
	})

	err := cmd.Execute()
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
	assert.Equal(t, 1, ExitCode(err))
	assert.NoDirExists(t, sitesDir)
}

func testSites() []domain.Site {
	return []domain.Site{
		{Domain: "a.example.com", Backend: "http://10.0.0.1:3000", Mode: domain.ModeHTTP},
		{Domain: "b.example.com", Backend: "http://10.0.0.2:3000", Mode: domain.ModeAuto},
	}
}

func TestList_Formats(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		h := newHarness()
		h.sites.On("List", mock.Anything).Return(testSites(), nil)

		stdout, _, err := h.execute("list", "--output", "plain")
		require.NoError(t, err)
		assert.Equal(t, "a.example.com\nb.example.com\n", stdout)
	})

	t.Run("json", func(t *testing.T) {
		h := newHarness()
		h.sites.On("List", mock.Anything).Return(testSites(), nil)

		stdout, _, err := h.execute("ls", "-o", "json")
		require.NoError(t, err)

		var got []domain.Site
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, testSites(), got)
	})

	t.Run("yaml", func(t *testing.T) {
		h := newHarness()
		h.sites.On("List", mock.Anything).Return(testSites(), nil)

		stdout, _, err := h.execute("list", "-o", "yaml")
		require.NoError(t, err)

		var got []domain.Site
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, testSites(), got)
	})

	t.Run("table", func(t *testing.T) {
		h := newHarness()
		h.sites.On("List", mock.Anything).Return(testSites(), nil)

		stdout, _, err := h.execute("list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "a.example.com")
		assert.Contains(t, stdout, "http://10.0.0.2:3000")
	})

	t.Run("empty table", func(t *testing.T) {
		h := newHarness()
		h.sites.On("List", mock.Anything).Return([]domain.Site{}, nil)

		stdout, _, err := h.execute("list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No sites configured")
	})

	t.Run("unknown format", func(t *testing.T) {
		h := newHarness()

		_, _, err := h.execute("list", "-o", "xml")
		assert.Error(t, err)
		h.sites.AssertNotCalled(t, "List", mock.Anything)
	})
}

func TestShow(t *testing.T) {
	h := newHarness()
	h.sites.On("Show", mock.Anything, "example.com").
		Return(&domain.Site{Domain: "example.com", Config: "# managed-by: sitectl\n"}, nil)

	stdout, _, err := h.execute("show", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "# managed-by: sitectl\n", stdout)
}

func TestTestConfig_PropagatesExitCode(t *testing.T) {
	h := newHarness()
	h.proxy.On("TestConfig", mock.Anything).Return(&out.ExecResult{
		ExitCode: 3,
		Stderr:   []byte("nginx: configuration file test failed\n"),
	}, nil)

	_, stderr, err := h.execute("test-config")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Equal(t, 3, ExitCode(err))
	assert.Contains(t, stderr, "test failed")
}

func TestTestConfig_Success(t *testing.T) {
	h := newHarness()
	h.proxy.On("TestConfig", mock.Anything).Return(&out.ExecResult{
		Stderr: []byte("nginx: configuration file /etc/nginx/nginx.conf test is successful\n"),
	}, nil)

	_, stderr, err := h.execute("test-config")
	require.NoError(t, err)
	assert.Contains(t, stderr, "successful")
}

func TestReload_PropagatesExitCode(t *testing.T) {
	h := newHarness()
	h.proxy.On("Reload", mock.Anything).Return(&out.ExecResult{ExitCode: 2}, nil)

	_, _, err := h.execute("reload")
	assert.ErrorIs(t, err, domain.ErrReloadFailed)
	assert.Equal(t, 2, ExitCode(err))
}

func TestReload_ExecutorError(t *testing.T) {
	h := newHarness()
	h.proxy.On("Reload", mock.Anything).Return(nil, errors.New("cannot connect to the Docker daemon"))

	_, _, err := h.execute("reload")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestSetupCron(t *testing.T) {
	h := newHarness()
	h.cron.On("EnsureReloadJob", mock.Anything).Return(true, nil).Once()
	h.cron.On("EnsureReloadJob", mock.Anything).Return(false, nil).Once()
	h.cron.On("Entry").Return("0 4 * * * /usr/bin/sitectl reload")

	stdout, _, err := h.execute("setup-cron", "--schedule", "0 4 * * *")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cron entry installed")
	assert.Contains(t, stdout, "0 4 * * * /usr/bin/sitectl reload")
	assert.Equal(t, [2]string{"0 4 * * *", ""}, h.cronAt)

	stdout, _, err = h.execute("setup-cron", "--schedule", "0 4 * * *")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already present")
}

func TestGlobalFlagsReachLoader(t *testing.T) {
	h := newHarness()
	h.sites.On("List", mock.Anything).Return([]domain.Site{}, nil)

	_, _, err := h.execute("--config", "/etc/sitectl/sitectl.toml", "--sites-dir", "/srv/conf.d", "--log-level", "debug", "list")
	require.NoError(t, err)
	assert.Equal(t, app.Options{
		ConfigPath: "/etc/sitectl/sitectl.toml",
		SitesDir:   "/srv/conf.d",
		LogLevel:   "debug",
	}, h.opts)
}

func TestLoaderErrorIsReturned(t *testing.T) {
	cmd := newRootCmd(func(app.Options) (*Deps, error) {
		return nil, errors.New("failed to load config: bad toml")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad toml")
}

func TestVersion(t *testing.T) {
	h := newHarness()
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	stdout, _, err := h.execute("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sitectl 1.2.3")
	assert.Contains(t, stdout, "Commit: abc123")

	stdout, _, err = h.execute("version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", stdout)
	assert.Empty(t, h.opts)
}

func TestRunnerTagsLoggerWithCommand(t *testing.T) {
	var logs bytes.Buffer
	h := newHarness()
	h.sites.On("List", mock.Anything).Run(func(args mock.Arguments) {
		logging.FromCtx(args.Get(0).(context.Context)).Info().Msg("listing")
	}).Return([]domain.Site{}, nil)

	cmd := newRootCmd(func(opts app.Options) (*Deps, error) {
		d, err := h.load(opts)
		d.Context = func(ctx context.Context) context.Context {
			return logging.WithCtx(ctx, zerolog.New(&logs))
		}
		return d, err
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"ls"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, logs.String(), `"component":"list"`)
}

func TestRunnerUsesContextHook(t *testing.T) {
	type key struct{}
	h := newHarness()
	h.sites.On("List", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(key{}) == "wired"
	})).Return([]domain.Site{}, nil)

	cmd := newRootCmd(func(opts app.Options) (*Deps, error) {
		d, err := h.load(opts)
		d.Context = func(ctx context.Context) context.Context {
			return context.WithValue(ctx, key{}, "wired")
		}
		return d, err
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list"})

	require.NoError(t, cmd.Execute())
	h.sites.AssertExpectations(t)
}
