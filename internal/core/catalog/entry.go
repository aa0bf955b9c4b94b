// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog defines the personal book catalog: entries and their ordered collection.

Core Responsibility:

  - Entry: one immutable book record (title, author, year, cover handle).
  - Catalog: the ordered sequence of entries with add, remove and sort.
  - Events: every mutation is announced to subscribers so a rendering layer
    can mirror the sequence without the catalog knowing about HTML.

The catalog is not safe for concurrent use. Callers serialise access per
session, the same way a page processes one UI event at a time.
*/
package catalog

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// # Year

// yearSentinel is how a non-numeric year is displayed.
const yearSentinel = "NaN"

// Year is a best-effort numeric year. Valid is false when the input was not a number.
type Year struct {
	Value int
	Valid bool
}

// ParseYear coerces text into a [Year] without ever failing.
//
// Surrounding space is ignored, decimal and exponent forms are truncated toward
// zero, and anything else (including values that overflow int) yields the
// invalid sentinel. No range check is applied.
func ParseYear(text string) Year {
	trimmed := strings.TrimSpace(text)

	if n, err := strconv.Atoi(trimmed); err == nil {
		return Year{Value: n, Valid: true}
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Year{}
	}

	f = math.Trunc(f)
	if f >= math.MaxInt || f < math.MinInt {
		return Year{}
	}
	return Year{Value: int(f), Valid: true}
}

// String renders the year, or "NaN" for the sentinel.
func (y Year) String() string {
	if !y.Valid {
		return yearSentinel
	}
	return strconv.Itoa(y.Value)
}

// MarshalJSON encodes the sentinel as null.
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(y.Value)
}

// UnmarshalJSON accepts a number or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = Year{}
		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*y = Year{Value: value, Valid: true}
	return nil
}

// # Entry

// ReleaseFunc revokes the display resource tied to an entry.
type ReleaseFunc func(ctx context.Context) error

// Entry is one catalog record. It has no update operation; fields are fixed at construction.
type Entry struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Author    string       `json:"author"`
	Year      Year         `json:"year"`
	Cover     cover.Handle `json:"cover_url"`
	CreatedAt time.Time    `json:"created_at"`

	release  ReleaseFunc
	once     sync.Once
	disposed bool
}

// NewEntry builds an entry with a fresh UUIDv7 id.
//
// release is captured here and runs at most once, from [Entry.Dispose].
// A nil release is allowed for entries whose cover needs no revocation.
func NewEntry(title, author, yearText string, handle cover.Handle, release ReleaseFunc) *Entry {
	return &Entry{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Year:      ParseYear(yearText),
		Cover:     handle,
		CreatedAt: time.Now().UTC(),
		release:   release,
	}
}

// Dispose releases the cover. Only the first call does any work; later calls return nil.
func (e *Entry) Dispose(ctx context.Context) error {
	var err error
	e.once.Do(func() {
		e.disposed = true
		if e.release != nil {
			err = e.release(ctx)
		}
	})
	return err
}

// Disposed reports whether [Entry.Dispose] has run.
func (e *Entry) Disposed() bool {
	return e.disposed
}
