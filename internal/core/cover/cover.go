// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cover allocates, serves, and revokes cover images for catalog entries.

A [Handle] is the server-side counterpart of a browser object URL: an opaque,
revocable reference to image bytes that doubles as the path the image is served
from. Every handle is created once and must be released exactly once.

Backends:

  - [MemoryStore]: bytes live in process memory (default).
  - [RedisStore]: bytes live in Redis with a TTL, for deployments that prefer
    keeping large uploads out of the Go heap.
*/
package cover

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/pkg/slug"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// ErrNotFound is returned for handles that were never created or are already released.
var ErrNotFound = apperr.NotFound("Cover")

// fallbackContentType is used when neither the bytes nor the upload identify a type.
const fallbackContentType = "application/octet-stream"

// Handle is an opaque, revocable reference to cover bytes.
type Handle string

// NewHandle mints a fresh, never-reused handle under [constants.CoverRoutePrefix].
func NewHandle() Handle {
	return Handle(constants.CoverRoutePrefix + uuid.New())
}

// HandleFromKey rebuilds a handle from the key segment of its URL.
func HandleFromKey(key string) Handle {
	return Handle(constants.CoverRoutePrefix + key)
}

// Key returns the trailing identifier of the handle.
func (h Handle) Key() string {
	return strings.TrimPrefix(string(h), constants.CoverRoutePrefix)
}

// URL returns the path the cover is served from.
func (h Handle) URL() string {
	return string(h)
}

// Blob is the payload behind a handle. Filename is optional and already sanitised.
type Blob struct {
	ContentType string
	Filename    string
	Data        []byte
}

// NewBlob builds a Blob, sniffing the content type from the bytes and falling
// back to the type the client declared.
func NewBlob(declaredType string, data []byte) Blob {
	contentType := http.DetectContentType(data)
	if contentType == fallbackContentType && declaredType != "" {
		contentType = declaredType
	}
	return Blob{ContentType: contentType, Data: data}
}

// WithFilename returns a copy of b carrying the slugged form of the uploaded name.
func (b Blob) WithFilename(name string) Blob {
	b.Filename = slug.Filename(name)
	return b
}

// Store creates, opens and releases cover handles. Implementations are safe
// for concurrent use.
type Store interface {
	// Create allocates a new handle for blob.
	Create(ctx context.Context, blob Blob) (Handle, error)

	// Open returns the bytes behind handle, or [ErrNotFound] once released.
	Open(ctx context.Context, handle Handle) (*Blob, error)

	// Release revokes handle. Releasing an unknown handle returns [ErrNotFound].
	Release(ctx context.Context, handle Handle) error
}
