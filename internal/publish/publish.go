// Package publish makes an encoded raster available to the caller and
// returns its retrieval URL.
package publish

import (
	"context"
)

// Publisher uploads the file at path and returns a URL for it.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}
