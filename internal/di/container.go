package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
	"admin-e2e/internal/infrastructure/artifacts"
	"admin-e2e/internal/infrastructure/browser/chromedp"
	"admin-e2e/internal/infrastructure/browser/rod"
	"admin-e2e/internal/infrastructure/logger"
	"admin-e2e/internal/pages"
)

var ErrUnknownDriver = errors.New("unknown browser driver")

type Driver string

const (
	DriverRod      Driver = "rod"
	DriverChromedp Driver = "chromedp"
)

func ParseDriver(s string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(s))) {
	case "", DriverRod:
		return DriverRod, nil
	case DriverChromedp:
		return DriverChromedp, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, s)
}

type Container struct {
	Browser   output.BrowserPort
	Logger    output.LoggerPort
	Artifacts output.ArtifactStore
	Admin     *pages.AdminPage
	Tools     *pages.ToolsPage

	ownsLogger bool
}

type Config struct {
	BaseURL        string
	Credentials    entity.Credentials
	Driver         Driver
	Headless       bool
	Timeout        time.Duration
	ConfirmTimeout time.Duration
	ConfirmPolicy  pages.ConfirmPolicy
	ArtifactsDir   string
	ToolsFixture   string
	RunName        string

	// Logger overrides the per-run file logger. The container does not close
	// it.
	Logger output.LoggerPort
}

// ConfigFromEnv reads the container settings from cfg. Invalid driver or
// confirm policy values are errors; everything else falls back to defaults.
func ConfigFromEnv(cfg output.ConfigPort) (Config, error) {
	driver, err := ParseDriver(cfg.Get("BROWSER_DRIVER"))
	if err != nil {
		return Config{}, err
	}
	policy, err := pages.ParseConfirmPolicy(cfg.Get("CONFIRM_POLICY"))
	if err != nil {
		return Config{}, err
	}

	defaults := entity.DefaultCredentials()
	return Config{
		BaseURL: cfg.Get("ADMIN_BASE_URL"),
		Credentials: entity.Credentials{
			Username: cfg.GetWithDefault("ADMIN_USERNAME", defaults.Username),
			Password: cfg.GetWithDefault("ADMIN_PASSWORD", defaults.Password),
		},
		Driver:         driver,
		Headless:       cfg.GetBool("BROWSER_HEADLESS", true),
		Timeout:        cfg.GetDuration("BROWSER_TIMEOUT", 10*time.Second),
		ConfirmTimeout: cfg.GetDuration("CONFIRM_TIMEOUT", 2*time.Second),
		ConfirmPolicy:  policy,
		ArtifactsDir:   cfg.Get("ARTIFACTS_DIR"),
		ToolsFixture:   cfg.GetWithDefault("TOOLS_FIXTURE", "fixtures/tools.yaml"),
		RunName:        cfg.GetWithDefault("RUN_NAME", "smoke"),
	}, nil
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}

	c := &Container{Logger: cfg.Logger}
	if c.Logger == nil {
		log, err := logger.NewLoggerAdapter(cfg.RunName)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		c.Logger = log
		c.ownsLogger = true
	}

	browser, err := newBrowser(ctx, cfg, c.Logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	c.Browser = browser

	pageCfg := pages.Config{
		Credentials:    cfg.Credentials,
		ConfirmTimeout: cfg.ConfirmTimeout,
		ConfirmPolicy:  cfg.ConfirmPolicy,
	}
	if cfg.ArtifactsDir != "" {
		store, err := artifacts.NewStore(cfg.ArtifactsDir)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create artifact store: %w", err)
		}
		c.Artifacts = store
		pageCfg.Artifacts = store
	}

	c.Admin = pages.NewAdminPage(c.Browser, c.Logger, pageCfg)
	c.Tools = pages.NewToolsPage(c.Browser, c.Admin, c.Logger)

	c.Logger.Info("container ready", "driver", string(cfg.Driver), "base_url", cfg.BaseURL)
	return c, nil
}

func newBrowser(ctx context.Context, cfg Config, log output.LoggerPort) (output.BrowserPort, error) {
	switch cfg.Driver {
	case "", DriverRod:
		bc := rod.DefaultConfig()
		bc.BaseURL = cfg.BaseURL
		bc.Headless = cfg.Headless
		bc.Timeout = cfg.Timeout
		return rod.NewBrowserAdapter(ctx, bc)
	case DriverChromedp:
		bc := chromedp.DefaultConfig()
		bc.BaseURL = cfg.BaseURL
		bc.Headless = cfg.Headless
		bc.Timeout = cfg.Timeout
		bc.Logger = log
		return chromedp.NewBrowserAdapter(ctx, bc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil && c.ownsLogger {
		c.Logger.Close()
	}
}
