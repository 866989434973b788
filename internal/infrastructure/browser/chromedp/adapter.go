// Package chromedp implements the browser port over the Chrome DevTools
// Protocol using chromedp. Element queries go through ByJSPath so locator
// semantics match the rod driver.
package chromedp

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

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const defaultTimeout = 10 * time.Second

type BrowserConfig struct {
	BaseURL   string
	Headless  bool
	Timeout   time.Duration
	NoSandbox bool
	ExecPath  string
	Width     int64
	Height    int64
	Logger    output.LoggerPort
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless: true,
		Timeout:  defaultTimeout,
		Width:    1280,
		Height:   800,
	}
}

type BrowserAdapter struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	baseURL     *url.URL
	timeout     time.Duration
	closed      bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: base url %q", output.ErrInvalidURL, cfg.BaseURL)
		}
		base = u
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, chromedp.WindowSize(int(cfg.Width), int(cfg.Height)))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	var ctxOpts []chromedp.ContextOption
	if cfg.Logger != nil {
		log := cfg.Logger.WithField("driver", "chromedp")
		ctxOpts = append(ctxOpts, chromedp.WithErrorf(func(format string, args ...any) {
			log.Warn(fmt.Sprintf(format, args...))
		}))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	b := &BrowserAdapter{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		baseURL:     base,
		timeout:     cfg.Timeout,
	}

	var start []chromedp.Action
	if cfg.Width > 0 && cfg.Height > 0 {
		start = append(start, emulation.SetDeviceMetricsOverride(cfg.Width, cfg.Height, 1, false))
	}
	// The first Run allocates Chrome on the context it is given, so it must be
	// the tab context itself. A derived timeout would kill the browser on
	// return. ctx only aborts the launch.
	if ctx != nil {
		stop := context.AfterFunc(ctx, tabCancel)
		defer stop()
	}
	if err := chromedp.Run(tabCtx, start...); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	if ctx != nil && ctx.Err() != nil {
		b.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", ctx.Err())
	}

	return b, nil
}

func (b *BrowserAdapter) IsReady() bool {
	return !b.closed
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if !b.IsReady() {
		return output.ErrBrowserNotConnected
	}

	target, err := b.resolveURL(rawURL)
	if err != nil {
		return err
	}

	if err := b.run(ctx, 0, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	var loc string
	if err := b.run(context.Background(), 0, chromedp.Location(&loc)); err != nil {
		return ""
	}
	return loc
}

func (b *BrowserAdapter) Fill(ctx context.Context, loc entity.Locator, text string) error {
	sel, err := b.selector(loc)
	if err != nil {
		return err
	}

	err = b.run(ctx, 0,
		chromedp.WaitVisible(sel, chromedp.ByJSPath),
		chromedp.Clear(sel, chromedp.ByJSPath),
		chromedp.SendKeys(sel, text, chromedp.ByJSPath),
	)
	if err != nil {
		return fmt.Errorf("fill failed: %s: %w", loc, err)
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, loc entity.Locator) error {
	sel, err := b.selector(loc)
	if err != nil {
		return err
	}

	if err := b.run(ctx, 0, chromedp.Click(sel, chromedp.ByJSPath)); err != nil {
		return fmt.Errorf("click failed: %s: %w", loc, err)
	}
	return nil
}

func (b *BrowserAdapter) SelectOption(ctx context.Context, loc entity.Locator, value string) error {
	sel, err := b.selector(loc)
	if err != nil {
		return err
	}
	expr, err := locatorjs.Call(locatorjs.Select, locatorjs.Chain(loc), value)
	if err != nil {
		return err
	}

	var status string
	err = b.run(ctx, 0,
		chromedp.WaitReady(sel, chromedp.ByJSPath),
		chromedp.Evaluate(expr, &status),
	)
	if err != nil {
		return fmt.Errorf("select failed: %s: %w", loc, err)
	}

	switch status {
	case "ok":
		return nil
	case "no-option":
		return fmt.Errorf("%w: %q in %s", output.ErrOptionNotFound, value, loc)
	default:
		return fmt.Errorf("select failed: %s: %s", loc, status)
	}
}

func (b *BrowserAdapter) WaitVisible(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return b.poll(ctx, loc, locatorjs.Visible, timeout, "visible")
}

func (b *BrowserAdapter) WaitHidden(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return b.poll(ctx, loc, locatorjs.Hidden, timeout, "hidden")
}

func (b *BrowserAdapter) poll(ctx context.Context, loc entity.Locator, fn string, timeout time.Duration, state string) error {
	if err := b.check(loc); err != nil {
		return err
	}
	expr, err := locatorjs.Call(fn, locatorjs.Chain(loc))
	if err != nil {
		return err
	}

	if err := b.waitTrue(ctx, expr, timeout); err != nil {
		return fmt.Errorf("waiting for %s to be %s: %w", loc, state, err)
	}
	return nil
}

func (b *BrowserAdapter) WaitURL(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error {
	if !b.IsReady() {
		return output.ErrBrowserNotConnected
	}
	expr, err := locatorjs.Call(locatorjs.URLMatch, pattern.String())
	if err != nil {
		return err
	}

	if err := b.waitTrue(ctx, expr, timeout); err != nil {
		return fmt.Errorf("waiting for url %s: %w", pattern, err)
	}
	return nil
}

func (b *BrowserAdapter) waitTrue(ctx context.Context, expr string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = b.timeout
	}
	var ok bool
	return b.run(ctx, timeout, chromedp.Poll(expr, &ok, chromedp.WithPollingTimeout(timeout)))
}

func (b *BrowserAdapter) IsVisible(ctx context.Context, loc entity.Locator) (bool, error) {
	if err := b.check(loc); err != nil {
		return false, err
	}
	expr, err := locatorjs.Call(locatorjs.Visible, locatorjs.Chain(loc))
	if err != nil {
		return false, err
	}

	var visible bool
	if err := b.run(ctx, 0, chromedp.Evaluate(expr, &visible)); err != nil {
		return false, fmt.Errorf("visibility check failed: %s: %w", loc, err)
	}
	return visible, nil
}

func (b *BrowserAdapter) Count(ctx context.Context, loc entity.Locator) (int, error) {
	if err := b.check(loc); err != nil {
		return 0, err
	}
	expr, err := locatorjs.Call(locatorjs.Count, locatorjs.Chain(loc))
	if err != nil {
		return 0, err
	}

	var n int
	if err := b.run(ctx, 0, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, fmt.Errorf("count failed: %s: %w", loc, err)
	}
	return n, nil
}

func (b *BrowserAdapter) TextContent(ctx context.Context, loc entity.Locator, timeout time.Duration) (string, error) {
	sel, err := b.selector(loc)
	if err != nil {
		return "", err
	}

	var markup string
	if err := b.run(ctx, timeout, chromedp.OuterHTML(sel, &markup, chromedp.ByJSPath)); err != nil {
		return "", fmt.Errorf("element not found: %s: %w", loc, err)
	}
	return htmltext.TextContent(markup)
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if !b.IsReady() {
		return nil, output.ErrBrowserNotConnected
	}

	var buf []byte
	if err := b.run(ctx, 0, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return artifacts.Normalize(buf)
}

func (b *BrowserAdapter) Close() {
	if b.closed {
		return
	}
	b.closed = true

	if b.tabCancel != nil {
		b.tabCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// run executes actions on the tab, bounded by timeout (or the default) and
// abandoned early if ctx is cancelled.
func (b *BrowserAdapter) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = b.timeout
	}

	runCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	defer cancel()

	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}

	return translate(chromedp.Run(runCtx, actions...))
}

func (b *BrowserAdapter) check(loc entity.Locator) error {
	if !b.IsReady() {
		return output.ErrBrowserNotConnected
	}
	if !loc.Valid() {
		return output.ErrInvalidSelector
	}
	return nil
}

func (b *BrowserAdapter) selector(loc entity.Locator) (string, error) {
	if err := b.check(loc); err != nil {
		return "", err
	}
	return locatorjs.Call(locatorjs.First, locatorjs.Chain(loc))
}

func (b *BrowserAdapter) resolveURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", output.ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", output.ErrInvalidURL, err)
	}

	if !u.IsAbs() {
		if b.baseURL == nil {
			return "", fmt.Errorf("%w: relative url %q without base url", output.ErrInvalidURL, raw)
		}
		u = b.baseURL.ResolveReference(u)
	}

	switch u.Scheme {
	case "http", "https", "about":
		return u.String(), nil
	}
	return "", fmt.Errorf("%w: unsupported scheme %q", output.ErrInvalidURL, u.Scheme)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, chromedp.ErrPollingTimeout) {
		return fmt.Errorf("%w: %w", output.ErrTimeout, err)
	}
	return err
}
