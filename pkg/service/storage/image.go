package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageBytes is the largest accepted upload
	MaxImageBytes = 5 << 20
	// MaxImagePixels bounds width*height of an upload before it is decoded
	MaxImagePixels = 40_000_000
	// MaxImageWidth is the width uploads are downscaled to
	MaxImageWidth = 1200
	// JPEGQuality is used when re-encoding uploads
	JPEGQuality = 85

	// DefaultBucket holds contact screenshots
	DefaultBucket = "contact-images"
)

var (
	ErrNotImage      = goerr.New("file is not an image")
	ErrImageTooLarge = goerr.New("image exceeds size limit")
	ErrForeignURL    = goerr.New("URL does not belong to this image store")
)

// PrepareImage validates an upload and returns it as a JPEG no wider than
// MaxImageWidth
func PrepareImage(contentType string, r io.Reader) ([]byte, error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, goerr.Wrap(ErrNotImage, "unsupported content type", goerr.V("content_type", contentType))
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image")
	}
	if len(raw) > MaxImageBytes {
		return nil, goerr.Wrap(ErrImageTooLarge, "image too large", goerr.V("limit", MaxImageBytes))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(ErrNotImage, "failed to read image header", goerr.V("error", err.Error()))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, goerr.Wrap(ErrImageTooLarge, "image dimensions too large",
			goerr.V("width", cfg.Width), goerr.V("height", cfg.Height), goerr.V("limit", MaxImagePixels))
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(ErrNotImage, "failed to decode image", goerr.V("error", err.Error()))
	}

	dst := downscale(src, MaxImageWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, goerr.Wrap(err, "failed to encode image", goerr.V("format", format))
	}
	return buf.Bytes(), nil
}

func downscale(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return src
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ObjectName returns the storage path for a new upload of userID
func ObjectName(userID string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d_%s.jpg", userID, now.UnixMilli(), suffix)
}

// ownedBy reports whether url names an object under prefix in userID's folder
func ownedBy(prefix, url, userID string) bool {
	if userID == "" || strings.Contains(userID, "/") {
		return false
	}
	object, err := objectFromURL(prefix, url)
	if err != nil {
		return false
	}
	return strings.HasPrefix(object, userID+"/")
}

// objectFromURL extracts the object path from a URL under prefix
func objectFromURL(prefix, url string) (string, error) {
	if !strings.HasPrefix(url, prefix) {
		return "", goerr.Wrap(ErrForeignURL, "unexpected image URL", goerr.V("url", url))
	}
	object := strings.TrimPrefix(url, prefix)
	if object == "" || strings.Contains(object, "..") {
		return "", goerr.Wrap(ErrForeignURL, "invalid image object", goerr.V("url", url))
	}
	return object, nil
}
