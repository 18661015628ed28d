package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
)

// GCS stores images in a Google Cloud Storage bucket
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

var _ interfaces.ImageStore = &GCS{}

type GCSOption func(*GCS)

// WithPublicBaseURL overrides https://storage.googleapis.com/<bucket>/
func WithPublicBaseURL(u string) GCSOption {
	return func(g *GCS) {
		g.baseURL = u
	}
}

// NewGCS creates a bucket-backed image store using application default credentials
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{
		client:  client,
		bucket:  bucket,
		baseURL: "https://storage.googleapis.com/" + bucket + "/",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) Upload(ctx context.Context, userID string, contentType string, r io.Reader) (string, error) {
	data, err := PrepareImage(contentType, r)
	if err != nil {
		return "", err
	}

	object := ObjectName(userID, g.now())
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write image", goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize image", goerr.V("object", object))
	}

	return g.baseURL + object, nil
}

func (g *GCS) Delete(ctx context.Context, url string) error {
	object, err := objectFromURL(g.baseURL, url)
	if err != nil {
		return err
	}

	if err := g.client.Bucket(g.bucket).Object(object).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete image", goerr.V("object", object))
	}
	return nil
}

func (g *GCS) Owns(url string, userID string) bool {
	return ownedBy(g.baseURL, url, userID)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
