package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
	"github.com/secmon-lab/vatracker/pkg/service/storage"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the contact image store
type Storage struct {
	backend       string
	bucket        string
	publicBaseURL string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "image-store",
			Usage:       "Image store backend (gcs or memory)",
			Category:    "Storage",
			Value:       "gcs",
			Sources:     cli.EnvVars("VATRACKER_IMAGE_STORE"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "image-bucket",
			Usage:       "Cloud Storage bucket for contact images",
			Category:    "Storage",
			Value:       storage.DefaultBucket,
			Sources:     cli.EnvVars("VATRACKER_IMAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "image-public-base-url",
			Usage:       "Public URL prefix of stored images (default https://storage.googleapis.com/<bucket>/)",
			Category:    "Storage",
			Sources:     cli.EnvVars("VATRACKER_IMAGE_PUBLIC_BASE_URL"),
			Destination: &x.publicBaseURL,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("bucket", x.bucket),
	)
}

// Configure returns the image store and a closer for its client
func (x *Storage) Configure(ctx context.Context) (interfaces.ImageStore, func(), error) {
	switch x.backend {
	case "gcs":
		var opts []storage.GCSOption
		if x.publicBaseURL != "" {
			opts = append(opts, storage.WithPublicBaseURL(x.publicBaseURL))
		}
		store, err := storage.NewGCS(ctx, x.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize image store")
		}
		logging.Default().Info("Using Cloud Storage image store", "bucket", x.bucket)
		closer := func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close image store", "error", err.Error())
			}
		}
		return store, closer, nil

	case "memory":
		logging.Default().Info("Using in-memory image store (development mode)")
		return storage.NewMemory(), func() {}, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid image store backend", goerr.V(FlagKey, "image-store"), goerr.V(ValueKey, x.backend))
	}
}
