package rod

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
	"admin-e2e/internal/infrastructure/artifacts"
	"admin-e2e/internal/infrastructure/browser/htmltext"
	"admin-e2e/internal/infrastructure/browser/locatorjs"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var (
	ErrBrowserNotConnected = output.ErrBrowserNotConnected
	ErrInvalidURL          = output.ErrInvalidURL
	ErrInvalidSelector     = output.ErrInvalidSelector
)

const (
	defaultTimeout    = 10 * time.Second
	defaultSlowMotion = 0
)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	baseURL  *url.URL
	timeout  time.Duration
	closed   bool
}

type BrowserConfig struct {
	BaseURL    string
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	Trace      bool

	// DisableSecurityFeatures turns off same-origin checks. Only for local
	// dashboards served over mixed origins.
	DisableSecurityFeatures bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  false,
		DevTools:   false,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: base url %q", ErrInvalidURL, cfg.BaseURL)
		}
		base = u
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		Trace(cfg.Trace).
		SlowMotion(cfg.SlowMotion)

	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		baseURL:  base,
		timeout:  cfg.Timeout,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) GetTimeout() time.Duration {
	return b.timeout
}

// SetTimeout changes the default wait bound. Non-positive values are ignored.
func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d > 0 {
		b.timeout = d
	}
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if !b.IsReady() {
		return ErrBrowserNotConnected
	}

	target, err := b.resolveURL(rawURL)
	if err != nil {
		return err
	}

	page := b.scoped(ctx, 0)
	defer page.CancelTimeout()

	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("navigation failed: %w", translate(err))
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", translate(err))
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Fill(ctx context.Context, loc entity.Locator, text string) error {
	if err := b.check(loc); err != nil {
		return err
	}

	page := b.scoped(ctx, 0)
	defer page.CancelTimeout()

	el, err := first(page, loc)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", loc, err)
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %s: %w", loc, translate(err))
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, loc entity.Locator) error {
	if err := b.check(loc); err != nil {
		return err
	}

	page := b.scoped(ctx, 0)
	defer page.CancelTimeout()

	el, err := first(page, loc)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", loc, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %s: %w", loc, translate(err))
	}
	return nil
}

func (b *BrowserAdapter) SelectOption(ctx context.Context, loc entity.Locator, value string) error {
	if err := b.check(loc); err != nil {
		return err
	}

	page := b.scoped(ctx, 0)
	defer page.CancelTimeout()

	if _, err := first(page, loc); err != nil {
		return fmt.Errorf("select not found: %s: %w", loc, err)
	}

	res, err := page.Eval(locatorjs.Select, locatorjs.Chain(loc), value)
	if err != nil {
		return fmt.Errorf("select failed: %s: %w", loc, translate(err))
	}

	switch status := res.Value.Str(); status {
	case "ok":
		return nil
	case "no-option":
		return fmt.Errorf("%w: %q in %s", output.ErrOptionNotFound, value, loc)
	default:
		return fmt.Errorf("select failed: %s: %s", loc, status)
	}
}

func (b *BrowserAdapter) WaitVisible(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return b.waitFor(ctx, loc, locatorjs.Visible, timeout, "visible")
}

func (b *BrowserAdapter) WaitHidden(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return b.waitFor(ctx, loc, locatorjs.Hidden, timeout, "hidden")
}

func (b *BrowserAdapter) waitFor(ctx context.Context, loc entity.Locator, js string, timeout time.Duration, state string) error {
	if err := b.check(loc); err != nil {
		return err
	}

	page := b.scoped(ctx, timeout)
	defer page.CancelTimeout()

	if err := page.Wait(rod.Eval(js, locatorjs.Chain(loc))); err != nil {
		return fmt.Errorf("waiting for %s to be %s: %w", loc, state, translate(err))
	}
	return nil
}

func (b *BrowserAdapter) WaitURL(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error {
	if !b.IsReady() {
		return ErrBrowserNotConnected
	}

	page := b.scoped(ctx, timeout)
	defer page.CancelTimeout()

	if err := page.Wait(rod.Eval(locatorjs.URLMatch, pattern.String())); err != nil {
		return fmt.Errorf("waiting for url %s: %w", pattern, translate(err))
	}
	return nil
}

func (b *BrowserAdapter) IsVisible(ctx context.Context, loc entity.Locator) (bool, error) {
	if err := b.check(loc); err != nil {
		return false, err
	}

	res, err := b.page.Context(ctx).Eval(locatorjs.Visible, locatorjs.Chain(loc))
	if err != nil {
		return false, fmt.Errorf("visibility check failed: %s: %w", loc, translate(err))
	}
	return res.Value.Bool(), nil
}

func (b *BrowserAdapter) Count(ctx context.Context, loc entity.Locator) (int, error) {
	if err := b.check(loc); err != nil {
		return 0, err
	}

	res, err := b.page.Context(ctx).Eval(locatorjs.Count, locatorjs.Chain(loc))
	if err != nil {
		return 0, fmt.Errorf("count failed: %s: %w", loc, translate(err))
	}
	return res.Value.Int(), nil
}

func (b *BrowserAdapter) TextContent(ctx context.Context, loc entity.Locator, timeout time.Duration) (string, error) {
	if err := b.check(loc); err != nil {
		return "", err
	}

	page := b.scoped(ctx, timeout)
	defer page.CancelTimeout()

	el, err := first(page, loc)
	if err != nil {
		return "", fmt.Errorf("element not found: %s: %w", loc, err)
	}

	markup, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", translate(err))
	}

	return htmltext.TextContent(markup)
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if !b.IsReady() {
		return nil, ErrBrowserNotConnected
	}

	imgBytes, err := b.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	return artifacts.Normalize(imgBytes)
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) check(loc entity.Locator) error {
	if !b.IsReady() {
		return ErrBrowserNotConnected
	}
	if !loc.Valid() {
		return ErrInvalidSelector
	}
	return nil
}

// scoped binds the page to ctx with the given bound, or the default one.
func (b *BrowserAdapter) scoped(ctx context.Context, timeout time.Duration) *rod.Page {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = b.timeout
	}
	return b.page.Context(ctx).Timeout(timeout)
}

func (b *BrowserAdapter) resolveURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if !u.IsAbs() {
		if b.baseURL == nil {
			return "", fmt.Errorf("%w: relative url %q without base url", ErrInvalidURL, raw)
		}
		u = b.baseURL.ResolveReference(u)
	}

	switch u.Scheme {
	case "http", "https", "about":
		return u.String(), nil
	}
	return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
}

// first waits until the locator resolves to at least one element.
func first(page *rod.Page, loc entity.Locator) (*rod.Element, error) {
	el, err := page.ElementByJS(rod.Eval(locatorjs.First, locatorjs.Chain(loc)))
	if err != nil {
		return nil, translate(err)
	}
	return el, nil
}

func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", output.ErrTimeout, err)
	}
	return err
}
