// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the per-browser application context.

Each browser session owns one [Workspace]: a catalog plus the view that mirrors
it. Handlers never reach for global state; they resolve the workspace from the
request and run against it under its lock, so catalog mutations and the view
updates they trigger happen as one step.

Lifecycle:

  - Created on the first request without a known session cookie.
  - Touched on every request.
  - Evicted by the [Manager] janitor after the idle TTL, which releases every
    cover the catalog still owns.
*/
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/render"
)

// ErrClosed is returned when a request reaches a workspace that was already evicted.
var ErrClosed = errors.New("session: workspace closed")

// Workspace is one session's catalog and its rendered view.
type Workspace struct {
	id      string
	mu      sync.Mutex
	catalog *catalog.Catalog
	view    *render.View
	closed  bool
}

// NewWorkspace creates an empty workspace whose view follows its catalog.
func NewWorkspace(id string, tag language.Tag, templates *render.Templates, logger *slog.Logger) *Workspace {
	logger = logger.With(slog.String("session_id", id))

	entries := catalog.New(tag, logger)
	view := render.NewView(templates, logger)
	view.Attach(entries)

	return &Workspace{id: id, catalog: entries, view: view}
}

// ID returns the session id the workspace belongs to.
func (workspace *Workspace) ID() string {
	return workspace.id
}

// Run executes fn with exclusive access to the catalog.
func (workspace *Workspace) Run(fn func(catalog *catalog.Catalog) error) error {
	return workspace.Render(func(catalog *catalog.Catalog, _ *render.View) error {
		return fn(catalog)
	})
}

// Render executes fn with exclusive access to the catalog and its view.
func (workspace *Workspace) Render(fn func(catalog *catalog.Catalog, view *render.View) error) error {
	workspace.mu.Lock()
	defer workspace.mu.Unlock()

	if workspace.closed {
		return apperr.Internal(ErrClosed)
	}
	return fn(workspace.catalog, workspace.view)
}

// Close disposes every entry. Later calls and later Run calls see [ErrClosed].
func (workspace *Workspace) Close(ctx context.Context) error {
	workspace.mu.Lock()
	defer workspace.mu.Unlock()

	if workspace.closed {
		return nil
	}
	workspace.closed = true
	return workspace.catalog.Clear(ctx)
}
