package pages

import (
	"context"
	"regexp"
	"time"

	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
)

type call struct {
	op      string
	target  string
	value   string
	timeout time.Duration
}

// fakeBrowser records every driver call. Errors are keyed by "op target".
type fakeBrowser struct {
	calls    []call
	url      string
	redirect map[string]string
	onClick  map[string]func(f *fakeBrowser)
	fail     map[string]error
	visible  map[string]bool
	text     map[string]string
	shots    int
}

var _ output.BrowserPort = (*fakeBrowser)(nil)

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		redirect: map[string]string{},
		onClick:  map[string]func(f *fakeBrowser){},
		fail:     map[string]error{},
		visible:  map[string]bool{},
		text:     map[string]string{},
	}
}

func (f *fakeBrowser) record(op, target, value string, timeout time.Duration) error {
	f.calls = append(f.calls, call{op: op, target: target, value: value, timeout: timeout})
	return f.fail[op+" "+target]
}

func (f *fakeBrowser) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op+" "+c.target)
	}
	return out
}

func (f *fakeBrowser) find(op, target string) (call, bool) {
	for _, c := range f.calls {
		if c.op == op && c.target == target {
			return c, true
		}
	}
	return call{}, false
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	if err := f.record("navigate", url, "", 0); err != nil {
		return err
	}
	if to, ok := f.redirect[url]; ok {
		f.url = to
	} else {
		f.url = "http://dashboard.test" + url
	}
	return nil
}

func (f *fakeBrowser) CurrentURL() string { return f.url }

func (f *fakeBrowser) Fill(ctx context.Context, loc entity.Locator, text string) error {
	return f.record("fill", loc.String(), text, 0)
}

func (f *fakeBrowser) Click(ctx context.Context, loc entity.Locator) error {
	if err := f.record("click", loc.String(), "", 0); err != nil {
		return err
	}
	if fn, ok := f.onClick[loc.String()]; ok {
		fn(f)
	}
	return nil
}

func (f *fakeBrowser) SelectOption(ctx context.Context, loc entity.Locator, value string) error {
	return f.record("select", loc.String(), value, 0)
}

func (f *fakeBrowser) WaitVisible(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return f.record("waitVisible", loc.String(), "", timeout)
}

func (f *fakeBrowser) WaitHidden(ctx context.Context, loc entity.Locator, timeout time.Duration) error {
	return f.record("waitHidden", loc.String(), "", timeout)
}

func (f *fakeBrowser) WaitURL(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error {
	return f.record("waitURL", pattern.String(), "", timeout)
}

func (f *fakeBrowser) IsVisible(ctx context.Context, loc entity.Locator) (bool, error) {
	if err := f.record("isVisible", loc.String(), "", 0); err != nil {
		return false, err
	}
	return f.visible[loc.String()], nil
}

func (f *fakeBrowser) Count(ctx context.Context, loc entity.Locator) (int, error) {
	return 0, f.record("count", loc.String(), "", 0)
}

func (f *fakeBrowser) TextContent(ctx context.Context, loc entity.Locator, timeout time.Duration) (string, error) {
	if err := f.record("text", loc.String(), "", timeout); err != nil {
		return "", err
	}
	return f.text[loc.String()], nil
}

func (f *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	f.shots++
	return &entity.Screenshot{Data: []byte{0xff}, Format: "jpeg", Width: 1, Height: 1}, nil
}

func (f *fakeBrowser) Close() {}

type fakeArtifacts struct {
	saved []string
}

func (a *fakeArtifacts) SaveScreenshot(ctx context.Context, name string, shot *entity.Screenshot) (string, error) {
	a.saved = append(a.saved, name)
	return "/tmp/" + name + ".jpg", nil
}
