package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/cli/config"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the application configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appCfg.Path() == "" {
				return goerr.Wrap(config.ErrMissingFlag, "--config is required", goerr.V(config.FlagKey, "config"))
			}

			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"path", appCfg.Path(),
				"base_url", app.BaseURL,
				"timezone", app.Location().String(),
				"poll_interval", app.PollInterval().String(),
				"concurrency", app.Dashboard.Concurrency,
				"invitation_ttl", app.InvitationTTL().String(),
			)
			return nil
		},
	}
}
