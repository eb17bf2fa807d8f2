// Package assets resolves speaker photo references to decoded images.
//
// A picture reference is either a path inside the local photo directory or a
// URL (possibly relative to the configured photo base URL). Downloads are
// cached on disk keyed by a hash of the URL so re-runs of the card generator
// do not refetch, which also keeps re-runs deterministic when upstream photos
// change between runs.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/confgen/confgen/internal/config"
	"github.com/confgen/confgen/internal/logging"
)

// PhotoStore resolves and caches speaker photos.
type PhotoStore struct {
	photoDir string
	baseURL  string
	cacheDir string
	client   *http.Client
	logger   logging.Logger
}

// NewPhotoStore creates a photo store from the cards configuration.
func NewPhotoStore(cfg *config.CardsConfig, logger logging.Logger) (*PhotoStore, error) {
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0750); err != nil {
			return nil, fmt.Errorf("creating photo cache directory %s: %w", cfg.CacheDir, err)
		}
	}

	return &PhotoStore{
		photoDir: cfg.PhotoDir,
		baseURL:  strings.TrimRight(cfg.PhotoBaseURL, "/"),
		cacheDir: cfg.CacheDir,
		client: &http.Client{
			Timeout: time.Duration(cfg.DownloadTimeout) * time.Second,
		},
		logger: logger.WithComponent("assets"),
	}, nil
}

// Resolve returns the decoded photo for a picture reference. Local files are
// preferred; anything else is treated as a URL. Errors are returned so the
// caller can fall back to the placeholder.
func (ps *PhotoStore) Resolve(ctx context.Context, picture string) (image.Image, error) {
	if picture == "" {
		return nil, fmt.Errorf("empty picture reference")
	}

	if ps.photoDir != "" {
		local := filepath.Join(ps.photoDir, filepath.Base(picture))
		if img, err := decodeFile(local); err == nil {
			return img, nil
		}
	}

	photoURL, err := ps.pictureURL(picture)
	if err != nil {
		return nil, err
	}
	return ps.download(ctx, photoURL)
}

// pictureURL resolves a picture reference to an absolute URL.
func (ps *PhotoStore) pictureURL(picture string) (string, error) {
	if strings.HasPrefix(picture, "http://") || strings.HasPrefix(picture, "https://") {
		return picture, nil
	}
	if ps.baseURL == "" {
		return "", fmt.Errorf("relative picture reference %q and no photo base URL configured", picture)
	}
	u, err := url.Parse(ps.baseURL + "/" + strings.TrimLeft(picture, "/"))
	if err != nil {
		return "", fmt.Errorf("building photo URL for %q: %w", picture, err)
	}
	return u.String(), nil
}

// download fetches a photo, serving from and filling the on-disk cache.
func (ps *PhotoStore) download(ctx context.Context, photoURL string) (image.Image, error) {
	cachePath := ps.cachePath(photoURL)

	if cachePath != "" {
		if img, err := decodeFile(cachePath); err == nil {
			return img, nil
		} else if _, statErr := os.Stat(cachePath); statErr == nil {
			// Corrupted cache entry, evict and refetch.
			ps.logger.Warn(ctx, err, "evicting corrupted cached photo", "path", cachePath)
			os.Remove(cachePath)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", photoURL, err)
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading photo from %s: %w", photoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading photo from %s: status %d", photoURL, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding photo from %s: %w", photoURL, err)
	}

	if cachePath != "" {
		if err := writeCache(cachePath, img); err != nil {
			ps.logger.Warn(ctx, err, "caching photo failed", "path", cachePath)
		}
	}

	return img, nil
}

func (ps *PhotoStore) cachePath(photoURL string) string {
	if ps.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(photoURL))
	return filepath.Join(ps.cacheDir, hex.EncodeToString(sum[:])[:16]+".png")
}

func writeCache(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Placeholder returns a deterministic stand-in photo for a speaker without a
// usable picture: a flat disc whose color is derived from the speaker name.
func Placeholder(name string, size int) image.Image {
	if size <= 0 {
		size = 1
	}

	sum := sha256.Sum256([]byte(name))
	// Keep the palette muted so white text stays readable next to it.
	c := color.NRGBA{
		R: 64 + sum[0]%128,
		G: 64 + sum[1]%128,
		B: 64 + sum[2]%128,
		A: 255,
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - r + 0.5
			dy := float64(y) - r + 0.5
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}
