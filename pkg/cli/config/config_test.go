package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, app *config.App)
	}{
		{
			name: "full configuration",
			content: `
base_url = "https://tracker.example.com"
timezone = "America/New_York"

[dashboard]
poll_interval = "30s"
concurrency = 4

[invitation]
ttl = "72h"
`,
			check: func(t *testing.T, app *config.App) {
				gt.Value(t, app.BaseURL).Equal("https://tracker.example.com")
				gt.Value(t, app.Location().String()).Equal("America/New_York")
				gt.Value(t, app.PollInterval()).Equal(30 * time.Second)
				gt.Value(t, app.Dashboard.Concurrency).Equal(4)
				gt.Value(t, app.InvitationTTL()).Equal(72 * time.Hour)
			},
		},
		{
			name:    "empty file uses defaults",
			content: ``,
			check: func(t *testing.T, app *config.App) {
				gt.Value(t, app.BaseURL).Equal("http://localhost:8080")
				gt.Value(t, app.Location().String()).Equal("UTC")
				gt.Value(t, app.PollInterval()).Equal(10 * time.Second)
				gt.Value(t, app.InvitationTTL()).Equal(7 * 24 * time.Hour)
			},
		},
		{
			name:    "unknown timezone",
			content: `timezone = "Mars/Olympus"`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "relative base URL",
			content: `base_url = "/tracker"`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "poll interval too short",
			content: `
[dashboard]
poll_interval = "100ms"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "negative concurrency",
			content: `
[dashboard]
concurrency = -1
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "invalid ttl",
			content: `
[invitation]
ttl = "a week"
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Bool(t, errors.Is(err, tt.wantErr)).True()
				return
			}
			gt.NoError(t, err).Required()
			tt.check(t, app)
		})
	}
}

func TestLoadAppConfiguration_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(writeConfig(t, `base_url = `))
		gt.Value(t, err).NotNil()
	})
}

func TestAppConfig_ConfigureWithoutFile(t *testing.T) {
	var cfg config.AppConfig
	app, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, app.Dashboard.Concurrency).Equal(8)
	gt.Value(t, app.Timezone).Equal("UTC")
}
