package multimodal

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/BaSui01/visiondesc/internal/tlsutil"
	"github.com/BaSui01/visiondesc/types"
)

// LoaderConfig configures image acquisition.
type LoaderConfig struct {
	Timeout      time.Duration `json:"timeout" yaml:"timeout" env:"TIMEOUT"`
	MaxImageSize int64         `json:"max_image_size" yaml:"max_image_size" env:"MAX_IMAGE_SIZE"` // bytes
	UserAgent    string        `json:"user_agent" yaml:"user_agent"`

	// DisableLocalFiles 拒绝本地文件路径，只接受 http(s) URL 与 data URL
	DisableLocalFiles bool `json:"disable_local_files" yaml:"disable_local_files" env:"DISABLE_LOCAL_FILES"`
}

// DefaultLoaderConfig returns default loader configuration.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Timeout:      30 * time.Second,
		MaxImageSize: 20 * 1024 * 1024, // 20MB
		UserAgent:    "visiondesc/1.0",
	}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the default hardened HTTP client.
func WithHTTPClient(hc *http.Client) LoaderOption {
	return func(l *Loader) {
		if hc != nil {
			l.client = resty.NewWithClient(hc)
		}
	}
}

// Loader fetches images by URL or reads them from disk.
type Loader struct {
	client *resty.Client
	config LoaderConfig
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(config LoaderConfig, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultLoaderConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxImageSize <= 0 {
		config.MaxImageSize = defaults.MaxImageSize
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	l := &Loader{
		client: resty.New().SetTransport(tlsutil.SecureTransport()),
		config: config,
		logger: logger.With(zap.String("component", "image_loader")),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.client.
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "image/*")

	return l
}

// Load returns the bytes and normalized content type of the image named by
// identifier: an http(s) URL, a data: URL or, unless DisableLocalFiles is
// set, a local file path.
func (l *Loader) Load(ctx context.Context, identifier string) (*Image, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "image identifier is empty").
			WithHTTPStatus(http.StatusBadRequest)
	}

	var (
		img *Image
		err error
	)
	switch {
	case IsRemote(identifier):
		img, err = l.fetch(ctx, identifier)
	case IsDataURL(identifier):
		img, err = decodeDataURL(identifier)
	case l.config.DisableLocalFiles:
		return nil, types.NewError(types.ErrInvalidRequest, "image identifier must be an http(s) URL or a data URL").
			WithHTTPStatus(http.StatusBadRequest)
	default:
		img, err = l.readFile(identifier)
	}
	if err != nil {
		return nil, err
	}

	if int64(len(img.Data)) > l.config.MaxImageSize {
		return nil, l.tooLarge(identifier, int64(len(img.Data)))
	}

	l.logger.Debug("image loaded",
		zap.String("identifier", identifier),
		zap.String("content_type", img.ContentType),
		zap.Int("bytes", img.Size()),
	)
	return img, nil
}

// fetch downloads rawURL, reading at most MaxImageSize+1 bytes of the body.
func (l *Loader) fetch(ctx context.Context, rawURL string) (*Image, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, types.Errorf(types.ErrImageLoadFailed, "could not retrieve image from URL: %s", rawURL).
			WithCause(err).
			WithHTTPStatus(http.StatusBadGateway)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, types.Errorf(types.ErrImageLoadFailed, "could not retrieve image from URL: %s (status %d)", rawURL, resp.StatusCode()).
			WithHTTPStatus(http.StatusBadGateway)
	}
	if n := resp.RawResponse.ContentLength; n > l.config.MaxImageSize {
		return nil, l.tooLarge(rawURL, n)
	}

	data, err := io.ReadAll(io.LimitReader(body, l.config.MaxImageSize+1))
	if err != nil {
		return nil, types.Errorf(types.ErrImageLoadFailed, "could not retrieve image from URL: %s", rawURL).
			WithCause(err).
			WithHTTPStatus(http.StatusBadGateway)
	}
	if int64(len(data)) > l.config.MaxImageSize {
		return nil, l.tooLarge(rawURL, -1)
	}

	return &Image{
		Identifier:  rawURL,
		Data:        data,
		ContentType: resolveContentType(resp.Header().Get("Content-Type"), rawURL, data),
	}, nil
}

func (l *Loader) readFile(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err == nil && info.Size() > l.config.MaxImageSize {
		return nil, l.tooLarge(path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Errorf(types.ErrImageLoadFailed, "could not read local file: %s", path).
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
	}

	return &Image{
		Identifier:  path,
		Data:        data,
		ContentType: resolveContentType("", path, data),
	}, nil
}

// tooLarge reports an image over MaxImageSize; size < 0 means the stream was
// cut off before its length was known.
func (l *Loader) tooLarge(identifier string, size int64) *types.Error {
	if size < 0 {
		return types.Errorf(types.ErrUnsupportedMedia,
			"image %s exceeds limit of %d bytes", identifier, l.config.MaxImageSize).
			WithHTTPStatus(http.StatusRequestEntityTooLarge)
	}
	return types.Errorf(types.ErrUnsupportedMedia,
		"image %s is %d bytes, exceeds limit of %d bytes", identifier, size, l.config.MaxImageSize).
		WithHTTPStatus(http.StatusRequestEntityTooLarge)
}

func decodeDataURL(identifier string) (*Image, error) {
	header, payload, ok := strings.Cut(identifier, ",")
	if !ok || !strings.HasSuffix(strings.ToLower(header), ";base64") {
		return nil, types.NewError(types.ErrInvalidRequest, "data URL must be base64 encoded").
			WithHTTPStatus(http.StatusBadRequest)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "data URL payload is not valid base64").
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
	}

	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	return &Image{
		Identifier:  identifier,
		Data:        data,
		ContentType: resolveContentType(declared, "", data),
	}, nil
}

// resolveContentType picks the first image/* type among the declared header,
// the name's extension and the sniffed content, falling back to image/jpeg.
func resolveContentType(declared, name string, data []byte) string {
	if ct := NormalizeContentType(declared); strings.HasPrefix(ct, "image/") {
		return ct
	}
	if name != "" {
		if ct := contentTypeFromName(name); strings.HasPrefix(ct, "image/") {
			return ct
		}
	}
	if len(data) > 0 {
		if ct := NormalizeContentType(mimetype.Detect(data).String()); strings.HasPrefix(ct, "image/") {
			return ct
		}
	}
	return DefaultContentType
}
