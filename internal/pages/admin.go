// Package pages holds page objects for the admin dashboard. Each operation is
// a fixed sequence of driver calls with checkpoint assertions; nothing is
// retried and a failed checkpoint leaves the page as it is.
package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admin-e2e/internal/application/port/input"
	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
)

var _ input.AdminActions = (*AdminPage)(nil)

// ErrCheckpoint marks a failed visibility assertion inside an operation.
var ErrCheckpoint = errors.New("checkpoint failed")

type ConfirmPolicy int

const (
	// ConfirmOptional skips the confirmation click, with a warning, when the
	// dialog does not show up within ConfirmTimeout.
	ConfirmOptional ConfirmPolicy = iota
	// ConfirmRequired fails the deletion in that case.
	ConfirmRequired
)

func ParseConfirmPolicy(s string) (ConfirmPolicy, error) {
	switch s {
	case "", "optional":
		return ConfirmOptional, nil
	case "required":
		return ConfirmRequired, nil
	}
	return ConfirmOptional, fmt.Errorf("unknown confirm policy %q", s)
}

const defaultConfirmTimeout = 2 * time.Second

type Config struct {
	Credentials    entity.Credentials
	ConfirmTimeout time.Duration
	ConfirmPolicy  ConfirmPolicy

	// Artifacts, when set, receives a screenshot for every failed checkpoint.
	Artifacts output.ArtifactStore
}

func DefaultConfig() Config {
	return Config{
		Credentials:    entity.DefaultCredentials(),
		ConfirmTimeout: defaultConfirmTimeout,
		ConfirmPolicy:  ConfirmOptional,
	}
}

type fillFunc func(ctx context.Context, b output.BrowserPort, loc entity.Locator, value string) error

var fillers = map[entity.FieldKind]fillFunc{
	entity.FieldText: func(ctx context.Context, b output.BrowserPort, loc entity.Locator, value string) error {
		return b.Fill(ctx, loc, value)
	},
	entity.FieldSelect: func(ctx context.Context, b output.BrowserPort, loc entity.Locator, value string) error {
		return b.SelectOption(ctx, loc, value)
	},
}

type AdminPage struct {
	browser output.BrowserPort
	log     output.LoggerPort
	cfg     Config
}

func NewAdminPage(browser output.BrowserPort, log output.LoggerPort, cfg Config) *AdminPage {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	defaults := entity.DefaultCredentials()
	if cfg.Credentials.Username == "" {
		cfg.Credentials.Username = defaults.Username
	}
	if cfg.Credentials.Password == "" {
		cfg.Credentials.Password = defaults.Password
	}

	return &AdminPage{
		browser: browser,
		log:     log.WithField("page", "admin"),
		cfg:     cfg,
	}
}

// Credentials returns the credentials the page was configured with.
func (p *AdminPage) Credentials() entity.Credentials {
	return p.cfg.Credentials
}

// Login opens /admin and submits the login form if the dashboard redirected
// there. Calling it on an authenticated session only navigates.
func (p *AdminPage) Login(ctx context.Context, creds entity.Credentials) error {
	if creds.Username == "" {
		creds.Username = p.cfg.Credentials.Username
	}
	if creds.Password == "" {
		creds.Password = p.cfg.Credentials.Password
	}

	if err := p.browser.Navigate(ctx, adminPath); err != nil {
		return fmt.Errorf("open admin: %w", err)
	}

	current := p.browser.CurrentURL()
	if !loginURL.MatchString(current) {
		p.log.Debug("already authenticated", "url", current)
		return nil
	}

	p.log.Info("logging in", "user", creds.Username)

	if err := p.browser.Fill(ctx, field(emailField), creds.Username); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	if err := p.browser.Fill(ctx, field(passwordField), creds.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := p.browser.Click(ctx, entity.Locate(submitButton)); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := p.browser.WaitURL(ctx, adminURL, 0); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// NavigateToTab clicks #tab-<name> and waits for #<name>-panel. Unknown tab
// names surface as a timeout.
func (p *AdminPage) NavigateToTab(ctx context.Context, name string) error {
	p.log.Debug("switching tab", "tab", name)

	if err := p.browser.Click(ctx, tab(name)); err != nil {
		return fmt.Errorf("open tab %s: %w", name, err)
	}
	if err := p.browser.WaitVisible(ctx, panel(name), 0); err != nil {
		return fmt.Errorf("tab %s: %w", name, err)
	}
	return nil
}

func (p *AdminPage) CreateTool(ctx context.Context, tool entity.ToolDescriptor) error {
	log := p.log.WithField("tool", tool.Name())
	modal := entity.Locate(createToolModal)

	if err := p.NavigateToTab(ctx, toolsTab); err != nil {
		return err
	}
	if err := p.browser.Click(ctx, button("Add Tool")); err != nil {
		return fmt.Errorf("open create tool modal: %w", err)
	}
	if err := p.browser.WaitVisible(ctx, modal, 0); err != nil {
		return p.checkpoint(ctx, "create-tool-modal-visible", err)
	}

	if err := p.fillToolForm(ctx, tool); err != nil {
		return err
	}

	if err := p.browser.Click(ctx, modal.Locator(submitButton)); err != nil {
		return fmt.Errorf("submit tool form: %w", err)
	}
	if err := p.browser.WaitHidden(ctx, modal, 0); err != nil {
		return p.checkpoint(ctx, "create-tool-modal-hidden", err)
	}

	log.Info("tool created", "fields", len(tool.Fields))
	return nil
}

func (p *AdminPage) fillToolForm(ctx context.Context, tool entity.ToolDescriptor) error {
	for _, f := range tool.Fields {
		fill, ok := fillers[f.Kind]
		if !ok {
			return fmt.Errorf("field %s: unsupported kind %s", f.Name, f.Kind)
		}
		p.log.Debug("filling field", "field", f.Name, "kind", f.Kind.String())
		if err := fill(ctx, p.browser, field(f.Name), f.Value); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

// ToolByName returns the tools table rows containing name. It may match no
// row, or several when names share a substring.
func (p *AdminPage) ToolByName(name string) entity.Locator {
	return entity.Locate(toolsTableRows).WithText(name)
}

// DeleteTool clicks the row's Delete button and then confirms in the
// confirmation dialog, waiting at most ConfirmTimeout for it to appear.
func (p *AdminPage) DeleteTool(ctx context.Context, name string) error {
	log := p.log.WithField("tool", name)

	if err := p.browser.Click(ctx, p.ToolByName(name).Locator("button").WithText("Delete")); err != nil {
		return fmt.Errorf("delete tool %s: %w", name, err)
	}

	confirm := entity.Locate(deleteConfirmBox + " button").WithText("Confirm")
	err := p.browser.WaitVisible(ctx, confirm, p.cfg.ConfirmTimeout)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// The caller's deadline, not the confirmation bound, ended the wait.
		return fmt.Errorf("delete tool %s: waiting for confirmation: %w (%w)", name, err, context.Cause(ctx))
	case errors.Is(err, output.ErrTimeout) && p.cfg.ConfirmPolicy == ConfirmOptional:
		log.Warn("delete confirmation did not appear, skipping", "waited", p.cfg.ConfirmTimeout.String())
		return nil
	default:
		return p.checkpoint(ctx, "delete-confirmation-visible", err)
	}

	if err := p.browser.Click(ctx, confirm); err != nil {
		return fmt.Errorf("confirm delete %s: %w", name, err)
	}

	log.Info("tool deleted")
	return nil
}

// checkpoint records a failed assertion and wraps err with ErrCheckpoint.
func (p *AdminPage) checkpoint(ctx context.Context, name string, err error) error {
	p.log.Error("checkpoint failed", "checkpoint", name, "error", err)

	if p.cfg.Artifacts != nil {
		if shot, shotErr := p.browser.Screenshot(ctx); shotErr == nil {
			if path, saveErr := p.cfg.Artifacts.SaveScreenshot(ctx, name, shot); saveErr == nil {
				p.log.Info("screenshot saved", "checkpoint", name, "path", path)
			}
		}
	}

	return fmt.Errorf("%w: %s: %w", ErrCheckpoint, name, err)
}
