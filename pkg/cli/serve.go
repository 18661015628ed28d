package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/cli/config"
	httpctrl "github.com/secmon-lab/vatracker/pkg/controller/http"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var baseURL string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var storageCfg config.Storage
	var notifyCfg config.Notification
	var authCfg config.Auth
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("VATRACKER_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL for invitation links (overrides base_url of the config file)",
			Sources:     cli.EnvVars("VATRACKER_BASE_URL"),
			Destination: &baseURL,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}
			if baseURL == "" {
				baseURL = app.BaseURL
			}

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			images, closeImages, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeImages()

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)", "auth", authCfg)
			} else {
				logging.Default().Info("IAP authentication enabled", "auth", authCfg)
			}

			channels, err := notifyCfg.Configure(ctx)
			if err != nil {
				return err
			}
			dispatcher := notifyCfg.Dispatcher(repo, channels, baseURL, app.InvitationTTL())

			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
				usecase.WithPublisher(dispatcher),
				usecase.WithImageStore(images),
				usecase.WithBaseURL(baseURL),
				usecase.WithLocation(app.Location()),
				usecase.WithInvitationTTL(app.InvitationTTL()),
				usecase.WithTeamConcurrency(app.Dashboard.Concurrency),
			}
			if channels.Slack != nil {
				ucOpts = append(ucOpts, usecase.WithSlackWebhook(channels.Slack))
			}
			uc := usecase.New(repo, ucOpts...)

			// Create HTTP server
			httpHandler, err := httpctrl.New(uc,
				httpctrl.WithAuth(authUC),
				httpctrl.WithPollInterval(app.PollInterval()),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"base_url", baseURL,
					"timezone", app.Location().String(),
					"poll_interval", app.PollInterval().String(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
