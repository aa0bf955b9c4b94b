// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/ctxkey"
	"github.com/taibuivan/bookshelf/internal/platform/ctxutil"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// Middleware attaches the request's workspace to its context.
//
// The session cookie is (re)issued whenever a new workspace had to be created.
// secure marks the cookie HTTPS-only.
func Middleware(manager *Manager, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			var id string
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && uuid.Valid(cookie.Value) {
				id = cookie.Value
			}

			workspace, created := manager.Resolve(id)
			if created {
				http.SetCookie(writer, &http.Cookie{
					Name:     constants.SessionCookieName,
					Value:    workspace.ID(),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithWorkspace(request.Context(), workspace)
			ctx = ctxutil.EnrichLogger(ctx, slog.String("session_id", workspace.ID()))

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// WithWorkspace returns a new context carrying workspace.
func WithWorkspace(ctx context.Context, workspace *Workspace) context.Context {
	return context.WithValue(ctx, ctxkey.KeyWorkspace, workspace)
}

// FromContext retrieves the workspace placed by [Middleware].
func FromContext(ctx context.Context) (*Workspace, bool) {
	workspace, ok := ctx.Value(ctxkey.KeyWorkspace).(*Workspace)
	return workspace, ok
}

// Current returns the request's workspace or an INTERNAL_ERROR when [Middleware] did not run.
func Current(request *http.Request) (*Workspace, error) {
	workspace, ok := FromContext(request.Context())
	if !ok {
		return nil, apperr.Internal(errors.New("session: no workspace in request context"))
	}
	return workspace, nil
}

// Resolve is a [catalog.SessionResolver] backed by [Current].
func Resolve(request *http.Request) (catalog.Session, error) {
	workspace, err := Current(request)
	if err != nil {
		return nil, err
	}
	return workspace, nil
}
