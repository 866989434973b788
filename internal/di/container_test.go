package di

import (
	"context"
	"testing"
	"time"

	"admin-e2e/internal/infrastructure/logger"
	"admin-e2e/internal/pages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapConfig map[string]string

func (m mapConfig) Get(key string) string { return m[key] }

func (m mapConfig) MustGet(key string) string {
	v, ok := m[key]
	if !ok {
		panic("missing " + key)
	}
	return v
}

func (m mapConfig) GetWithDefault(key, def string) string {
	if v := m[key]; v != "" {
		return v
	}
	return def
}

func (m mapConfig) GetBool(key string, def bool) bool {
	switch m[key] {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func (m mapConfig) GetInt(key string, def int) int { return def }

func (m mapConfig) GetDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(m[key]); err == nil {
		return d
	}
	return def
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverRod, false},
		{"rod", DriverRod, false},
		{" Chromedp ", DriverChromedp, false},
		{"playwright", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownDriver)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ConfigFromEnv(mapConfig{})
	require.NoError(t, err)

	assert.Equal(t, DriverRod, cfg.Driver)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, pages.ConfirmOptional, cfg.ConfirmPolicy)
	assert.Equal(t, "admin@example.com", cfg.Credentials.Username)
	assert.Equal(t, "changeme", cfg.Credentials.Password)
	assert.Equal(t, "fixtures/tools.yaml", cfg.ToolsFixture)
	assert.Empty(t, cfg.BaseURL)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	cfg, err := ConfigFromEnv(mapConfig{
		"ADMIN_BASE_URL":   "http://dash.local",
		"ADMIN_USERNAME":   "ops@example.com",
		"ADMIN_PASSWORD":   "s3cret",
		"BROWSER_DRIVER":   "chromedp",
		"BROWSER_HEADLESS": "false",
		"BROWSER_TIMEOUT":  "30s",
		"CONFIRM_TIMEOUT":  "500ms",
		"CONFIRM_POLICY":   "required",
		"ARTIFACTS_DIR":    "out/shots",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://dash.local", cfg.BaseURL)
	assert.Equal(t, "ops@example.com", cfg.Credentials.Username)
	assert.Equal(t, "s3cret", cfg.Credentials.Password)
	assert.Equal(t, DriverChromedp, cfg.Driver)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ConfirmTimeout)
	assert.Equal(t, pages.ConfirmRequired, cfg.ConfirmPolicy)
	assert.Equal(t, "out/shots", cfg.ArtifactsDir)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	_, err := ConfigFromEnv(mapConfig{"BROWSER_DRIVER": "selenium"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = ConfigFromEnv(mapConfig{"CONFIRM_POLICY": "sometimes"})
	assert.Error(t, err)
}

func TestNewContainer_RequiresBaseURL(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{Logger: logger.NewNop()})
	assert.Error(t, err)
}

func TestNewContainer_UnknownDriver(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{
		BaseURL: "http://localhost",
		Driver:  "selenium",
		Logger:  logger.NewNop(),
	})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
