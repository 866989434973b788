package output

import (
	"context"
	"errors"
	"regexp"
	"time"

	"admin-e2e/internal/domain/entity"
)

var (
	ErrBrowserNotConnected = errors.New("browser not connected")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSelector     = errors.New("invalid selector")
	ErrTimeout             = errors.New("timeout")
	ErrOptionNotFound      = errors.New("option not found")
)

// BrowserPort drives a single browser tab. Implementations are not safe for
// concurrent use. A zero timeout means the driver's default.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL() string

	Fill(ctx context.Context, loc entity.Locator, text string) error
	Click(ctx context.Context, loc entity.Locator) error
	SelectOption(ctx context.Context, loc entity.Locator, value string) error

	WaitVisible(ctx context.Context, loc entity.Locator, timeout time.Duration) error
	WaitHidden(ctx context.Context, loc entity.Locator, timeout time.Duration) error
	WaitURL(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error

	IsVisible(ctx context.Context, loc entity.Locator) (bool, error)
	Count(ctx context.Context, loc entity.Locator) (int, error)
	TextContent(ctx context.Context, loc entity.Locator, timeout time.Duration) (string, error)

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	Close()
}
