package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore holds uploaded files (payment vouchers, product images) and
// hands back a public URL for each object.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	PublicURL(key string) string
}
