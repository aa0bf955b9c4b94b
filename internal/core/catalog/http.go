// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog provides the JSON interface to a session's book catalog.

# Routing Strategy

  - GET    /api/v1/books         paginated listing in current order
  - POST   /api/v1/books         multipart add (title, author, year, cover)
  - DELETE /api/v1/books/{id}    remove; unknown ids still answer 204
  - POST   /api/v1/books/sort    reorder by {"criterion": "..."}

The handler translates between the web/JSON layer and the domain [Service].
*/
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/pkg/pagination"
)

// Session is the per-browser application context handlers run against.
//
// Run executes fn with exclusive access to the session's catalog.
type Session interface {
	Run(fn func(catalog *Catalog) error) error
}

// SessionResolver finds the session a request belongs to.
type SessionResolver func(request *http.Request) (Session, error)

// Handler serves the JSON catalog API.
type Handler struct {
	service       *Service
	resolve       SessionResolver
	maxCoverBytes int64
}

// NewHandler creates the JSON API handler.
func NewHandler(service *Service, resolve SessionResolver, maxCoverBytes int64) *Handler {
	return &Handler{service: service, resolve: resolve, maxCoverBytes: maxCoverBytes}
}

// Routes returns the router mounted at /api/v1/books.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listBooks)
	router.Post("/", handler.createBook)
	router.Post("/sort", handler.sortBooks)
	router.Delete("/{id}", handler.deleteBook)
	return router
}

// SortRequest is the body of POST /sort.
type SortRequest struct {
	Criterion string `json:"criterion"`
}

// SortResponse reports the new order and whether the criterion was applied.
type SortResponse struct {
	Sorted  bool     `json:"sorted"`
	Entries []*Entry `json:"entries"`
}

/*
ReadSubmission parses a multipart add-book form.

Description: Shared by the JSON API and the HTML form. Empty or missing
fields come back empty; presence is checked by [Service.Submit].

Returns:
  - Submission: Parsed fields, Cover is nil when no file was sent
  - error: PAYLOAD_TOO_LARGE or a malformed-form validation error
*/
func ReadSubmission(writer http.ResponseWriter, request *http.Request, maxBytes int64) (Submission, error) {
	if err := requestutil.ParseMultipart(writer, request, maxBytes); err != nil {
		return Submission{}, err
	}

	upload, err := requestutil.FormFile(request, FieldCover)
	if err != nil {
		return Submission{}, err
	}

	submission := Submission{
		Title:  requestutil.FormValue(request, FieldTitle),
		Author: requestutil.FormValue(request, FieldAuthor),
		Year:   requestutil.FormValue(request, FieldYear),
	}

	if upload != nil {
		blob := cover.NewBlob(upload.ContentType, upload.Data).WithFilename(upload.Filename)
		submission.Cover = &blob
	}

	return submission, nil
}

/*
GET /api/v1/books.

Request:
  - page, limit: pagination query parameters

Response:
  - 200: []Entry with pagination meta
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.resolve(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	var (
		page  []*Entry
		total int
	)
	err = session.Run(func(catalog *Catalog) error {
		entries := catalog.Entries()
		total = len(entries)
		start, end := params.Window(total)
		page = append([]*Entry{}, entries[start:end]...)
		return nil
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/books.

Request:
  - body: multipart/form-data with title, author, year, cover

Response:
  - 201: Entry
  - 400: VALIDATION_ERROR: a required field is missing
  - 413: PAYLOAD_TOO_LARGE: cover above the configured limit
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.resolve(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	submission, err := ReadSubmission(writer, request, handler.maxCoverBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var entry *Entry
	err = session.Run(func(catalog *Catalog) error {
		entry, err = handler.service.Submit(request.Context(), catalog, submission)
		return err
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
DELETE /api/v1/books/{id}.

Response:
  - 204: removed, or nothing to remove
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.resolve(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.Param(request, "id")
	err = session.Run(func(catalog *Catalog) error {
		handler.service.Remove(request.Context(), catalog, id)
		return nil
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/books/sort.

Request:
  - body: SortRequest (JSON)

Response:
  - 200: SortResponse; unknown criteria answer sorted=false with the order unchanged
  - 400: invalid JSON
*/
func (handler *Handler) sortBooks(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.resolve(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SortRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var response SortResponse
	err = session.Run(func(catalog *Catalog) error {
		response.Entries, response.Sorted = handler.service.Sort(catalog, input.Criterion)
		return nil
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if response.Entries == nil {
		response.Entries = []*Entry{}
	}
	respond.OK(writer, response)
}
