package upload

import (
	"context"
	"io"
)

// Provider represents a file storage implementation for food images
type Provider interface {
	MaxBytes() int64
	Upload(ctx context.Context, part io.Reader, ext string, mime string) (string, error)
}
