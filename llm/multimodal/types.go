// Package multimodal loads images for vision providers.
package multimodal

import (
	"encoding/base64"
	"mime"
	"net/url"
	"path"
	"strings"
)

// ImageFormat represents supported image formats.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatGIF  ImageFormat = "gif"
	ImageFormatWebP ImageFormat = "webp"
)

// MediaType returns the MIME type for the format.
func (f ImageFormat) MediaType() string {
	return "image/" + string(f)
}

// DefaultContentType is used when neither headers, extension nor content
// identify the image.
const DefaultContentType = "image/jpeg"

// Image is a loaded image ready to be sent to a provider.
type Image struct {
	Identifier  string `json:"identifier"`
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
}

// Size returns the image size in bytes.
func (i *Image) Size() int {
	return len(i.Data)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns a data: URL embedding the image.
func (i *Image) DataURL() string {
	return "data:" + i.ContentType + ";base64," + i.Base64()
}

// IsRemote reports whether identifier is an http(s) URL.
func IsRemote(identifier string) bool {
	lower := strings.ToLower(strings.TrimSpace(identifier))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsDataURL reports whether identifier is already a base64 data: URL.
func IsDataURL(identifier string) bool {
	return strings.HasPrefix(strings.ToLower(identifier), "data:")
}

// NormalizeContentType lower-cases ct, drops parameters and maps the
// non-standard image/jpg to image/jpeg. Empty input stays empty.
func NormalizeContentType(ct string) string {
	if ct == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mediaType
	} else if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

// ClaudeMediaType maps ct to one of the media types Anthropic accepts for
// base64 image blocks, defaulting to image/jpeg.
func ClaudeMediaType(ct string) string {
	switch NormalizeContentType(ct) {
	case "image/png":
		return ImageFormatPNG.MediaType()
	case "image/gif":
		return ImageFormatGIF.MediaType()
	case "image/webp":
		return ImageFormatWebP.MediaType()
	default:
		return ImageFormatJPEG.MediaType()
	}
}

// contentTypeFromName guesses the content type from a path or URL extension.
func contentTypeFromName(name string) string {
	if IsRemote(name) {
		if u, err := url.Parse(name); err == nil {
			name = u.Path
		}
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	return NormalizeContentType(mime.TypeByExtension(ext))
}
