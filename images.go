package mdstyle

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"

	// Raster decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ImageHandler resolves one image directive. It must eventually call
// onResolved exactly once, with the attachment or with nil on failure.
// It may call onResolved from any goroutine.
type ImageHandler func(url string, maxWidth float64, onResolved func(*Attachment))

// DefaultMaxImageBytes caps the size of a fetched image (20 MiB).
const DefaultMaxImageBytes = 20 << 20

// DefaultMaxImagePixels caps the declared canvas of an image before decoding.
const DefaultMaxImagePixels = 40_000_000

// attachmentBaseline shifts attachments below the text baseline.
const attachmentBaseline = -5

// HTTPImageLoader fetches, decodes and scales images over HTTP.
// It adds no timeout of its own: configure one on the http.Client.
type HTTPImageLoader struct {
	client    *http.Client
	maxBytes  int64
	maxPixels int
	userAgent string
	logger    *zap.Logger
}

// LoaderOption configures an HTTPImageLoader.
type LoaderOption func(*HTTPImageLoader)

// WithHTTPClient sets the client used for image requests.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *HTTPImageLoader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithMaxBytes caps the accepted response size.
// Panics if n <= 0 (programmer error).
func WithMaxBytes(n int64) LoaderOption {
	if n <= 0 {
		panic("mdstyle: WithMaxBytes size must be positive")
	}
	return func(l *HTTPImageLoader) {
		l.maxBytes = n
	}
}

// WithMaxPixels caps the declared width*height accepted for decoding.
// Panics if n <= 0 (programmer error).
func WithMaxPixels(n int) LoaderOption {
	if n <= 0 {
		panic("mdstyle: WithMaxPixels count must be positive")
	}
	return func(l *HTTPImageLoader) {
		l.maxPixels = n
	}
}

// WithUserAgent sets the User-Agent header on image requests.
func WithUserAgent(ua string) LoaderOption {
	return func(l *HTTPImageLoader) {
		l.userAgent = ua
	}
}

// WithLoaderLogger sets the logger for fetch failures.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *HTTPImageLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewHTTPImageLoader creates a loader using http.DefaultClient.
func NewHTTPImageLoader(opts ...LoaderOption) *HTTPImageLoader {
	l := &HTTPImageLoader{
		client:    http.DefaultClient,
		maxBytes:  DefaultMaxImageBytes,
		maxPixels: DefaultMaxImagePixels,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Handle satisfies ImageHandler. It blocks on the network, so the converter
// calls it on a dedicated goroutine per image.
func (l *HTTPImageLoader) Handle(rawURL string, maxWidth float64, onResolved func(*Attachment)) {
	att, err := l.Load(context.Background(), rawURL, maxWidth)
	if err != nil {
		l.logger.Warn("image not available", zap.String("url", rawURL), zap.Error(err))
		onResolved(nil)
		return
	}
	onResolved(att)
}

// Load validates rawURL, fetches it and decodes the body into an attachment
// scaled to maxWidth.
func (l *HTTPImageLoader) Load(ctx context.Context, rawURL string, maxWidth float64) (*Attachment, error) {
	u, err := ValidateImageURL(rawURL)
	if err != nil {
		return nil, err
	}
	data, err := l.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return decodeAttachment(rawURL, data, maxWidth, l.maxPixels)
}

// fetch downloads u, enforcing the size cap.
func (l *HTTPImageLoader) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrImageFetch, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrImageFetch, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, l.maxBytes)
	}
	return data, nil
}

// ValidateImageURL accepts absolute http and https URLs with a host.
func ValidateImageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidImageURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidImageURL, raw)
	}
	return u, nil
}

// DecodeAttachment decodes data as a raster image and computes its display
// bounds for maxWidth. Images declaring more than DefaultMaxImagePixels
// pixels are rejected before decoding.
func DecodeAttachment(source string, data []byte, maxWidth float64) (*Attachment, error) {
	return decodeAttachment(source, data, maxWidth, DefaultMaxImagePixels)
}

func decodeAttachment(source string, data []byte, maxWidth float64, maxPixels int) (*Attachment, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedImage, mt.String())
	}

	// The header is enough to size the bitmap; check it before allocating.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, mt.String(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty %dx%d canvas", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, mt.String(), err)
	}

	b := img.Bounds()
	w, h := ScaleBounds(float64(b.Dx()), float64(b.Dy()), maxWidth)
	return &Attachment{
		Source:       source,
		Format:       format,
		Image:        img,
		NativeWidth:  b.Dx(),
		NativeHeight: b.Dy(),
		Bounds:       Rect{Y: attachmentBaseline, Width: w, Height: h},
	}, nil
}

// ScaleBounds fits width to maxWidth preserving the aspect ratio.
// Images no wider than maxWidth keep their native size, as does any image
// when maxWidth is not positive.
func ScaleBounds(width, height, maxWidth float64) (float64, float64) {
	if maxWidth > 0 && width > maxWidth {
		return maxWidth, height * (maxWidth / width)
	}
	return width, height
}
