package pages

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"
	"admin-e2e/internal/fixture/dashboard"
	"admin-e2e/internal/infrastructure/artifacts"
	rodadapter "admin-e2e/internal/infrastructure/browser/rod"
	"admin-e2e/internal/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type e2eEnv struct {
	ctx     context.Context
	browser *rodadapter.BrowserAdapter
	admin   *AdminPage
	tools   *ToolsPage
	server  *dashboard.Server
}

func startE2E(t *testing.T, dash func(*dashboard.Config), page func(*Config)) *e2eEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	dcfg := dashboard.DefaultConfig()
	if dash != nil {
		dash(&dcfg)
	}
	srv := dashboard.New(dcfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	bcfg := rodadapter.DefaultConfig()
	bcfg.Headless = true
	bcfg.NoSandbox = true
	bcfg.BaseURL = ts.URL
	bcfg.Timeout = 3 * time.Second

	browser, err := rodadapter.NewBrowserAdapter(context.Background(), bcfg)
	require.NoError(t, err)
	t.Cleanup(browser.Close)

	pcfg := DefaultConfig()
	if page != nil {
		page(&pcfg)
	}
	log := logger.NewNop()
	admin := NewAdminPage(browser, log, pcfg)

	return &e2eEnv{
		ctx:     context.Background(),
		browser: browser,
		admin:   admin,
		tools:   NewToolsPage(browser, admin, log),
		server:  srv,
	}
}

func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestE2E_LoginIsIdempotent(t *testing.T) {
	env := startE2E(t, nil, nil)

	require.NoError(t, env.admin.Login(env.ctx, entity.DefaultCredentials()))
	assert.Regexp(t, adminURL, env.browser.CurrentURL())

	require.NoError(t, env.admin.Login(env.ctx, entity.DefaultCredentials()))
	assert.Regexp(t, adminURL, env.browser.CurrentURL())
	assert.NotRegexp(t, loginURL, env.browser.CurrentURL())
}

func TestE2E_LoginWrongPasswordTimesOut(t *testing.T) {
	env := startE2E(t, nil, nil)

	err := env.admin.Login(env.ctx, entity.Credentials{Username: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, output.ErrTimeout)
	assert.Regexp(t, loginURL, env.browser.CurrentURL())
}

func TestE2E_NavigateToUnknownTab(t *testing.T) {
	env := startE2E(t, nil, nil)
	require.NoError(t, env.tools.Setup(env.ctx))

	err := env.admin.NavigateToTab(env.ctx, "billing")
	assert.ErrorIs(t, err, output.ErrTimeout)
}

func TestE2E_CreateFindDelete(t *testing.T) {
	env := startE2E(t, nil, nil)
	require.NoError(t, env.tools.Setup(env.ctx))

	name := uniqueName("Weather")
	tool := entity.NewToolDescriptor(
		"name", name,
		"description", "forecast",
		"integrationType", "MCP",
		"url", "https://weather.example.com",
	)
	require.NoError(t, env.admin.CreateTool(env.ctx, tool))

	rows, err := env.browser.Count(env.ctx, env.admin.ToolByName(name))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	var stored dashboard.Tool
	for _, tl := range env.server.Tools() {
		if tl.Name == name {
			stored = tl
		}
	}
	assert.Equal(t, "MCP", stored.IntegrationType, "integrationType goes through the select")

	require.NoError(t, env.admin.DeleteTool(env.ctx, name))
	require.NoError(t, env.browser.WaitHidden(env.ctx, env.admin.ToolByName(name), 0))

	rows, err = env.browser.Count(env.ctx, env.admin.ToolByName(name))
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestE2E_ExecuteEcho(t *testing.T) {
	env := startE2E(t, nil, nil)
	require.NoError(t, env.tools.Setup(env.ctx))

	out, err := env.tools.ExecuteTool(env.ctx, "Echo", entity.Params("text", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	// A second run replaces the previous result.
	out, err = env.tools.ExecuteTool(env.ctx, "Echo", entity.Params("text", "again"))
	require.NoError(t, err)
	assert.Equal(t, "again", out)
}

func TestE2E_ExecuteCreatedTool(t *testing.T) {
	env := startE2E(t, nil, nil)
	require.NoError(t, env.tools.Setup(env.ctx))

	name := uniqueName("Mirror")
	require.NoError(t, env.admin.CreateTool(env.ctx, entity.NewToolDescriptor(
		"name", name,
		"integrationType", "REST",
		"url", "builtin://echo",
	)))

	out, err := env.tools.ExecuteTool(env.ctx, name, entity.Params("text", "through the form"))
	require.NoError(t, err)
	assert.Equal(t, "through the form", out)
}

func TestE2E_ExecuteSleepTimesOut(t *testing.T) {
	env := startE2E(t, nil, nil)
	require.NoError(t, env.tools.Setup(env.ctx))
	env.tools.resultTimeout = time.Second

	start := time.Now()
	_, err := env.tools.ExecuteTool(env.ctx, "Sleep", entity.NoParameters())
	assert.ErrorIs(t, err, output.ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestE2E_DeleteWithoutConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		policy  ConfirmPolicy
		wantErr error
	}{
		{"optional skips", ConfirmOptional, nil},
		{"required fails", ConfirmRequired, ErrCheckpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shots := t.TempDir()
			store, err := artifacts.NewStore(shots)
			require.NoError(t, err)

			env := startE2E(t,
				func(c *dashboard.Config) { c.SkipConfirmation = true },
				func(c *Config) {
					c.ConfirmPolicy = tt.policy
					c.ConfirmTimeout = 300 * time.Millisecond
					c.Artifacts = store
				},
			)
			require.NoError(t, env.tools.Setup(env.ctx))

			err = env.admin.DeleteTool(env.ctx, "Sleep")
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, output.ErrTimeout)
			}

			require.NoError(t, env.browser.WaitHidden(env.ctx, env.admin.ToolByName("Sleep"), 0))

			files, err := filepath.Glob(filepath.Join(shots, "*.jpg"))
			require.NoError(t, err)
			if tt.wantErr == nil {
				assert.Empty(t, files)
			} else {
				require.Len(t, files, 1)
				info, err := os.Stat(files[0])
				require.NoError(t, err)
				assert.Positive(t, info.Size())
			}
		})
	}
}
