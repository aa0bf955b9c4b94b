// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
)

// Handler serves cover bytes by handle.
type Handler struct {
	store Store
}

// NewHandler creates a cover handler over store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes returns the router mounted under [constants.CoverRoutePrefix].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{key}", handler.getCover)
	return router
}

/*
GET /covers/{key}.

Description: Streams the image behind a live handle. Released handles are gone
for good, the same way a revoked object URL stops resolving.

Response:
  - 200: image bytes
  - 404: handle unknown or released
*/
func (handler *Handler) getCover(writer http.ResponseWriter, request *http.Request) {
	handle := HandleFromKey(requestutil.Param(request, "key"))

	blob, err := handler.store.Open(request.Context(), handle)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			ctxutil.GetLogger(request.Context()).Error("cover_open_failed",
				"handle", handle.URL(), "error", err)
		}
		http.NotFound(writer, request)
		return
	}

	header := writer.Header()
	header.Set("Content-Type", blob.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(blob.Data)))
	header.Set("Cache-Control", "private, no-cache")
	header.Set("X-Content-Type-Options", "nosniff")
	if blob.Filename != "" {
		header.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": blob.Filename}))
	}
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(blob.Data)
}
