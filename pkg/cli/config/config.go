package config

import (
	"net/url"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/service/poller"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig holds the CLI flag pointing to the TOML application file
type AppConfig struct {
	path string
}

// Flags returns CLI flags for the application file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application configuration file",
			Category:    "Application",
			Sources:     cli.EnvVars("VATRACKER_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads the file, or returns the defaults when no file is given
func (a *AppConfig) Configure() (*App, error) {
	if a.path == "" {
		app := DefaultApp()
		if err := app.Validate(); err != nil {
			return nil, err
		}
		return app, nil
	}
	return LoadAppConfiguration(a.path)
}

// App is the content of the TOML application file
type App struct {
	BaseURL    string           `toml:"base_url"`
	Timezone   string           `toml:"timezone"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Invitation InvitationConfig `toml:"invitation"`

	location      *time.Location
	pollInterval  time.Duration
	invitationTTL time.Duration
}

// DashboardConfig controls the boss dashboard refresh
type DashboardConfig struct {
	PollInterval string `toml:"poll_interval"`
	Concurrency  int    `toml:"concurrency"`
}

type InvitationConfig struct {
	TTL string `toml:"ttl"`
}

// DefaultApp returns the configuration used without a file
func DefaultApp() *App {
	return &App{
		BaseURL:  "http://localhost:8080",
		Timezone: "UTC",
		Dashboard: DashboardConfig{
			PollInterval: poller.DefaultInterval.String(),
			Concurrency:  usecase.DefaultTeamConcurrency,
		},
		Invitation: InvitationConfig{
			TTL: model.DefaultInvitationTTL.String(),
		},
	}
}

// Validate checks every value and resolves the parsed forms. Empty values
// fall back to the defaults.
func (a *App) Validate() error {
	def := DefaultApp()
	if a.BaseURL == "" {
		a.BaseURL = def.BaseURL
	}
	if a.Timezone == "" {
		a.Timezone = def.Timezone
	}
	if a.Dashboard.PollInterval == "" {
		a.Dashboard.PollInterval = def.Dashboard.PollInterval
	}
	if a.Dashboard.Concurrency == 0 {
		a.Dashboard.Concurrency = def.Dashboard.Concurrency
	}
	if a.Invitation.TTL == "" {
		a.Invitation.TTL = def.Invitation.TTL
	}

	u, err := url.Parse(a.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return goerr.Wrap(ErrInvalidConfig, "base_url must be an absolute http(s) URL", goerr.V(FieldKey, "base_url"), goerr.V(ValueKey, a.BaseURL))
	}

	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return goerr.Wrap(ErrInvalidConfig, "unknown timezone", goerr.V(FieldKey, "timezone"), goerr.V(ValueKey, a.Timezone), goerr.V("cause", err.Error()))
	}

	interval, err := time.ParseDuration(a.Dashboard.PollInterval)
	if err != nil || interval < time.Second {
		return goerr.Wrap(ErrInvalidConfig, "poll_interval must be a duration of at least 1s", goerr.V(FieldKey, "dashboard.poll_interval"), goerr.V(ValueKey, a.Dashboard.PollInterval))
	}

	if a.Dashboard.Concurrency < 1 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency must be positive", goerr.V(FieldKey, "dashboard.concurrency"), goerr.V(ValueKey, a.Dashboard.Concurrency))
	}

	ttl, err := time.ParseDuration(a.Invitation.TTL)
	if err != nil || ttl <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "invitation ttl must be a positive duration", goerr.V(FieldKey, "invitation.ttl"), goerr.V(ValueKey, a.Invitation.TTL))
	}

	a.location = loc
	a.pollInterval = interval
	a.invitationTTL = ttl
	return nil
}

// Location returns the fallback time zone for "today"
func (a *App) Location() *time.Location {
	if a.location == nil {
		return time.UTC
	}
	return a.location
}

func (a *App) PollInterval() time.Duration {
	if a.pollInterval == 0 {
		return poller.DefaultInterval
	}
	return a.pollInterval
}

func (a *App) InvitationTTL() time.Duration {
	if a.invitationTTL == 0 {
		return model.DefaultInvitationTTL
	}
	return a.invitationTTL
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*App, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var app App
	if err := toml.Unmarshal(data, &app); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := app.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &app, nil
}
