package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"certgen/certificate-backend/pkg/pdf"
	"certgen/certificate-backend/pkg/storage"
)

var (
	// ErrUnavailable covers any optional image that is missing or undecodable.
	ErrUnavailable = errors.New("asset unavailable")
	// ErrRemoteFetch covers failed or non-200 network fetches.
	ErrRemoteFetch = errors.New("remote fetch failed")
)

// maxAssetBytes bounds every asset read, local or remote.
const maxAssetBytes = 20 << 20

// Loader resolves image references into embeddable images. A reference is
// an http(s) URL, an s3://bucket/key URI or a local path.
type Loader struct {
	client *http.Client
	s3     storage.S3Client
	logger *zap.Logger
}

// NewLoader creates a loader. s3 may be nil, in which case s3:// references
// are unavailable.
func NewLoader(client *http.Client, s3 storage.S3Client, logger *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, s3: s3, logger: logger}
}

// IsRemote reports whether ref is fetched over the network.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "s3://")
}

// Load reads and decodes ref.
func (l *Loader) Load(ctx context.Context, ref string) (*pdf.Image, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = l.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "s3://"):
		data, err = l.fetchS3(ctx, ref)
	default:
		data, err = readLocal(ref)
	}
	if err != nil {
		return nil, err
	}

	img, err := Decode(ref, data)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded asset",
		zap.String("ref", ref),
		zap.String("type", img.Type),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return img, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetch, url, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteFetch, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetch, url, err)
	}
	return data, nil
}

func (l *Loader) fetchS3(ctx context.Context, uri string) ([]byte, error) {
	if l.s3 == nil {
		return nil, fmt.Errorf("%w: %s: no s3 client configured", ErrRemoteFetch, uri)
	}
	bucket, key, err := storage.ParseS3URI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetch, err)
	}

	body, err := l.s3.Download(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetch, err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetch, uri, err)
	}
	return data, nil
}

func readLocal(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnavailable)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	return data, nil
}
