// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
)

// Global field names for validation
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldYear   = "year"
	FieldCover  = "cover"
	FieldSort   = "sort"
)

// Submission is the raw content of the add-book form.
type Submission struct {
	Title  string
	Author string
	Year   string
	Cover  *cover.Blob
}

// Service turns form submissions into entries and drives catalog mutations.
type Service struct {
	covers cover.Store
	logger *slog.Logger
}

// NewService creates a catalog service that allocates covers from covers.
func NewService(covers cover.Store, logger *slog.Logger) *Service {
	return &Service{covers: covers, logger: logger}
}

/*
Submit validates a submission and appends the resulting entry to catalog.

Description: Title, author, year and cover must all be present. When any is
missing nothing is allocated and catalog is untouched. The year is never
validated beyond presence.

Parameters:
  - ctx: context.Context
  - catalog: *Catalog (the caller holds the session lock)
  - submission: Submission

Returns:
  - *Entry: The added entry
  - error: VALIDATION_ERROR, or INTERNAL_ERROR when the cover cannot be stored
*/
func (service *Service) Submit(ctx context.Context, catalog *Catalog, submission Submission) (*Entry, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, submission.Title).
		Required(FieldAuthor, submission.Author).
		Required(FieldYear, submission.Year).
		Present(FieldCover, submission.Cover != nil && len(submission.Cover.Data) > 0)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	handle, err := service.covers.Create(ctx, *submission.Cover)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("catalog: store cover: %w", err))
	}

	// The entry owns the handle from here on; Dispose is the only release path
	entry := NewEntry(submission.Title, submission.Author, submission.Year, handle,
		func(ctx context.Context) error {
			if err := service.covers.Release(ctx, handle); err != nil {
				return err
			}
			service.logger.Debug("cover_released", slog.String("handle", handle.URL()))
			return nil
		})

	catalog.Add(entry)
	return entry, nil
}

/*
Remove deletes an entry by id. Unknown ids are a silent no-op.

Returns:
  - bool: Whether an entry was removed
*/
func (service *Service) Remove(ctx context.Context, catalog *Catalog, id string) bool {
	_, removed, err := catalog.Remove(ctx, id)
	if err != nil {
		// The entry is gone either way; a failed release only leaks until the store's own expiry
		service.logger.Warn("cover_release_failed", slog.String("entry_id", id), slog.Any("error", err))
	}
	return removed
}

/*
Sort applies the raw sort-control value. Unknown values change nothing.

Returns:
  - []*Entry: The sequence after the call
  - bool: Whether a sort happened
*/
func (service *Service) Sort(catalog *Catalog, raw string) ([]*Entry, bool) {
	criterion, ok := ParseCriterion(raw)
	if !ok {
		return catalog.Entries(), false
	}
	return catalog.Sort(criterion)
}
