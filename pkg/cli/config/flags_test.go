package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vatracker/pkg/cli/config"
	"github.com/secmon-lab/vatracker/pkg/repository/memory"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

func TestAuth_Configure(t *testing.T) {
	t.Run("no-auth returns the fixed identity", func(t *testing.T) {
		cfg := config.NewAuthForTest("", "", "boss-1", "boss@example.com", "")
		uc, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Bool(t, uc.IsNoAuthn()).True()

		id, err := uc.Authenticate(context.Background(), "")
		gt.NoError(t, err).Required()
		gt.Value(t, id.Subject).Equal("boss-1")
		gt.Value(t, id.Email).Equal("boss@example.com")
		gt.Value(t, id.Name).Equal("boss-1")
	})

	t.Run("IAP requires an audience", func(t *testing.T) {
		cfg := config.NewAuthForTest("", "", "", "", "")
		_, err := cfg.Configure()
		gt.Bool(t, errors.Is(err, config.ErrMissingFlag)).True()
	})

	t.Run("IAP verifier", func(t *testing.T) {
		cfg := config.NewAuthForTest("/projects/1/global/backendServices/2", "https://keys.example.com", "", "", "")
		uc, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Bool(t, uc.IsNoAuthn()).False()
	})
}

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "", "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		_, ok := repo.(*memory.Memory)
		gt.Bool(t, ok).True()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "", "", "").Configure(ctx)
		gt.Bool(t, errors.Is(err, config.ErrMissingFlag)).True()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("mysql", "", "", "").Configure(ctx)
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}

func TestStorage_Configure(t *testing.T) {
	ctx := context.Background()

	store, closer, err := config.NewStorageForTest("memory", "").Configure(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, store).NotNil()
	closer()

	_, _, err = config.NewStorageForTest("s3", "bucket").Configure(ctx)
	gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
}

func TestNotification_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured", func(t *testing.T) {
		cfg := config.NewNotificationForTest("", true)
		ch, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, ch.Email).Nil()
		gt.Value(t, ch.Slack).Nil()
		gt.Value(t, cfg.Dispatcher(memory.New(), ch, "http://localhost:8080", 0)).NotNil()
	})

	t.Run("slack is on by default", func(t *testing.T) {
		cfg := config.NewNotificationForTest("https://hooks.slack.com/services/T/B/X", false)
		ch, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, ch.Slack).NotNil()
	})
}

func TestLogger_Configure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("json to file with redaction", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		type settings struct {
			SlackWebhookURL string
		}
		logging.Default().Debug("saved", "settings", settings{SlackWebhookURL: "https://hooks.slack.com/services/T/B/secret"})
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), `"msg":"saved"`)).True()
		gt.Bool(t, strings.Contains(string(data), "hooks.slack.com")).False()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "console", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Value(t, err).NotNil()
	})
}

func TestSentry_ConfigureDisabled(t *testing.T) {
	var cfg config.Sentry
	flush, err := cfg.Configure("test")
	gt.NoError(t, err).Required()
	flush()
}
