package pages

import (
	"context"
	"fmt"
	"time"

	"admin-e2e/internal/application/port/input"
	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
)

var _ input.ToolsWorkflow = (*ToolsPage)(nil)

// ResultTimeout bounds the wait for a tool execution result.
const ResultTimeout = 10 * time.Second

// ToolsPage drives the tools tab. It shares its browser handle with the
// AdminPage it delegates to.
type ToolsPage struct {
	browser       output.BrowserPort
	admin         *AdminPage
	log           output.LoggerPort
	resultTimeout time.Duration
}

func NewToolsPage(browser output.BrowserPort, admin *AdminPage, log output.LoggerPort) *ToolsPage {
	return &ToolsPage{
		browser:       browser,
		admin:         admin,
		log:           log.WithField("page", "tools"),
		resultTimeout: ResultTimeout,
	}
}

func (p *ToolsPage) Admin() *AdminPage {
	return p.admin
}

// Setup logs in with the configured credentials and opens the tools tab.
func (p *ToolsPage) Setup(ctx context.Context) error {
	if err := p.admin.Login(ctx, p.admin.Credentials()); err != nil {
		return err
	}
	return p.admin.NavigateToTab(ctx, toolsTab)
}

// ExecuteTool runs the named tool from its table row and returns the text of
// the result element. Parameters, when present, are submitted as one JSON
// object.
func (p *ToolsPage) ExecuteTool(ctx context.Context, name string, params entity.Parameters) (string, error) {
	log := p.log.WithField("tool", name)
	start := time.Now()

	row := p.admin.ToolByName(name)
	if err := p.browser.Click(ctx, row.Locator("button").WithText("Execute")); err != nil {
		return "", fmt.Errorf("execute tool %s: %w", name, err)
	}
	if err := p.browser.WaitVisible(ctx, entity.Locate(executionModal), 0); err != nil {
		return "", p.admin.checkpoint(ctx, "tool-execution-modal-visible", err)
	}

	if params.Present() {
		payload, err := params.JSON()
		if err != nil {
			return "", err
		}
		if err := p.browser.Fill(ctx, field(toolParamsField), payload); err != nil {
			return "", fmt.Errorf("fill parameters: %w", err)
		}
	}

	if err := p.browser.Click(ctx, button("Run Tool")); err != nil {
		return "", fmt.Errorf("run tool %s: %w", name, err)
	}

	result := entity.Locate(toolResult)
	if err := p.browser.WaitVisible(ctx, result, p.resultTimeout); err != nil {
		log.Error("no result", "waited", p.resultTimeout.String(), "error", err)
		return "", fmt.Errorf("tool %s result: %w", name, err)
	}

	text, err := p.browser.TextContent(ctx, result, 0)
	if err != nil {
		return "", fmt.Errorf("read result: %w", err)
	}

	log.Info("tool executed", "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}
