package imagehost

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotConfigured = errors.New("image host is not configured")
	ErrNotDataURL    = errors.New("value is not a base64 image data url")
)

// Uploader stores an inline image somewhere public and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, dataURL, folder, publicID string) (string, error)
}

// IsDataURL reports whether v is an inline base64 image.
func IsDataURL(v string) bool {
	return strings.HasPrefix(v, "data:image/") && strings.Contains(v, ";base64,")
}

// Disabled is used when no image host credentials are configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, string) (string, error) {
	return "", ErrNotConfigured
}
