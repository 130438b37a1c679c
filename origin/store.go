// Package origin serves the static export of the web console, resolving
// every request through the rewrite rules the CDN applies at the edge.
package origin

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Store when no object exists for a key.
var ErrNotFound = errors.New("object not found")

// DefaultRootObject is served for the bare root path.
const DefaultRootObject = "index.html"

// Object is a file of the static export.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	ETag          string
	LastModified  time.Time
}

// Store fetches objects of the static export by key.
type Store interface {
	Get(ctx context.Context, key string) (*Object, error)
}

// ObjectKey maps a normalized request path to a store key.
func ObjectKey(normalized string) string {
	key := strings.TrimPrefix(normalized, "/")
	if key == "" {
		return DefaultRootObject
	}
	return key
}
