// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package web serves the server-rendered catalog page.

# Routing Strategy

  - GET  /                    the page, cards in catalog order
  - POST /books               add from the multipart form
  - POST /books/{id}/delete   remove one card
  - POST /books/sort          reorder by the sort control

Every POST answers 303 See Other back to "/". An incomplete add form is
rejected silently: nothing changes and no message is shown. A request whose
session was evicted while it was in flight is also sent back to "/", where
the browser starts a fresh session.
*/
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/internal/render"
	"github.com/taibuivan/bookshelf/internal/session"
)

// PageTitle is the heading of the catalog page.
const PageTitle = "My Bookshelf"

// Handler serves the HTML surface.
type Handler struct {
	service       *catalog.Service
	templates     *render.Templates
	maxCoverBytes int64
}

// NewHandler creates the HTML handler.
func NewHandler(service *catalog.Service, templates *render.Templates, maxCoverBytes int64) *Handler {
	return &Handler{service: service, templates: templates, maxCoverBytes: maxCoverBytes}
}

// Routes returns the router mounted at "/". Requests must already carry a workspace.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.page)
	router.Post("/books", handler.addBook)
	router.Post("/books/{id}/delete", handler.deleteBook)
	router.Post("/books/sort", handler.sortBooks)
	return router
}

/*
GET /.

Response:
  - 200: text/html page
*/
func (handler *Handler) page(writer http.ResponseWriter, request *http.Request) {
	workspace, err := session.Current(request)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	var buffer bytes.Buffer
	err = workspace.Render(func(catalog *catalog.Catalog, view *render.View) error {
		return handler.templates.Page(&buffer, render.PageData{
			Title:   PageTitle,
			Count:   catalog.Len(),
			Cards:   view.Cards(),
			Options: render.SortOptions(catalog.Criterion()),
		})
	})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(http.StatusOK)
	_, _ = buffer.WriteTo(writer)
}

/*
POST /books.

Request:
  - body: multipart/form-data with title, author, year, cover

Response:
  - 303: always, to "/"
*/
func (handler *Handler) addBook(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	submission, err := catalog.ReadSubmission(writer, request, handler.maxCoverBytes)
	if err != nil {
		logger.Info("book_form_rejected", slog.Any("error", err))
		handler.backToPage(writer, request)
		return
	}

	err = handler.run(request, func(catalog *catalog.Catalog) error {
		_, err := handler.service.Submit(request.Context(), catalog, submission)
		return err
	})
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < http.StatusInternalServerError {
			logger.Info("book_form_rejected", slog.Any("error", err))
			handler.backToPage(writer, request)
			return
		}
		handler.fail(writer, request, err)
		return
	}

	handler.backToPage(writer, request)
}

/*
POST /books/{id}/delete.

Response:
  - 303: always, to "/"; unknown ids change nothing
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	err := handler.run(request, func(catalog *catalog.Catalog) error {
		handler.service.Remove(request.Context(), catalog, id)
		return nil
	})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.backToPage(writer, request)
}

/*
POST /books/sort.

Request:
  - form field "sort": the selected criterion

Response:
  - 303: always, to "/"; unknown criteria change nothing
*/
func (handler *Handler) sortBooks(writer http.ResponseWriter, request *http.Request) {
	raw := request.PostFormValue(catalog.FieldSort)

	err := handler.run(request, func(catalog *catalog.Catalog) error {
		handler.service.Sort(catalog, raw)
		return nil
	})
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	handler.backToPage(writer, request)
}

func (handler *Handler) run(request *http.Request, fn func(catalog *catalog.Catalog) error) error {
	workspace, err := session.Current(request)
	if err != nil {
		return err
	}
	return workspace.Run(fn)
}

// fail answers err, turning an evicted session into a redirect home.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	if errors.Is(err, session.ErrClosed) {
		ctxutil.GetLogger(request.Context()).Info("session_gone_mid_request", slog.Any("error", err))
		handler.backToPage(writer, request)
		return
	}
	respond.Error(writer, request, err)
}

func (handler *Handler) backToPage(writer http.ResponseWriter, request *http.Request) {
	http.Redirect(writer, request, "/", http.StatusSeeOther)
}
