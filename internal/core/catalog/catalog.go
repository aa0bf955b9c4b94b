// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/language"
)

// # Events

// EventKind classifies a catalog mutation.
type EventKind int

const (
	// EventAdded carries the appended entry.
	EventAdded EventKind = iota + 1

	// EventRemoved carries the removed entry and the index it occupied.
	EventRemoved

	// EventReordered carries the whole new sequence. Subscribers rebuild from scratch.
	EventReordered
)

// Event describes one mutation. Entries is only set for [EventReordered].
type Event struct {
	Kind    EventKind
	Entry   *Entry
	Index   int
	Entries []*Entry
}

// Listener receives events synchronously, after the sequence has changed.
type Listener func(Event)

// # Catalog

// Catalog is the ordered collection of entries. Insertion order is kept until a sort.
type Catalog struct {
	entries   []*Entry
	tag       language.Tag
	criterion Criterion
	listeners []Listener
	logger    *slog.Logger
}

// New creates an empty catalog that collates text under tag.
func New(tag language.Tag, logger *slog.Logger) *Catalog {
	return &Catalog{tag: tag, logger: logger}
}

// Subscribe registers fn for every later mutation.
func (catalog *Catalog) Subscribe(fn Listener) {
	catalog.listeners = append(catalog.listeners, fn)
}

func (catalog *Catalog) emit(event Event) {
	for _, fn := range catalog.listeners {
		fn(event)
	}
}

/*
Add appends entry to the sequence.

Description: Exactly one [EventAdded] is emitted. An entry whose id is already
present is ignored so ids stay unique.

Returns:
  - []*Entry: The new sequence (a copy)
*/
func (catalog *Catalog) Add(entry *Entry) []*Entry {
	if catalog.indexOf(entry.ID) >= 0 {
		catalog.logger.Warn("entry_add_duplicate_ignored", slog.String("entry_id", entry.ID))
		return catalog.Entries()
	}

	catalog.entries = append(catalog.entries, entry)
	catalog.emit(Event{Kind: EventAdded, Entry: entry, Index: len(catalog.entries) - 1})

	catalog.logger.Info("entry_added",
		slog.String("entry_id", entry.ID),
		slog.String("title", entry.Title),
		slog.Int("size", len(catalog.entries)),
	)
	return catalog.Entries()
}

/*
Remove deletes the entry with id.

Description: An unknown id is a no-op. Otherwise the entry leaves the sequence,
its cover is disposed, and one [EventRemoved] is emitted, in that order and
always together. A failed cover release does not keep the entry around; the
error is returned for logging.

Returns:
  - []*Entry: The new sequence (a copy)
  - bool: Whether an entry was removed
  - error: Cover release failure, if any
*/
func (catalog *Catalog) Remove(ctx context.Context, id string) ([]*Entry, bool, error) {
	index := catalog.indexOf(id)
	if index < 0 {
		return catalog.Entries(), false, nil
	}

	entry := catalog.entries[index]
	catalog.entries = slices.Delete(catalog.entries, index, index+1)

	releaseErr := entry.Dispose(ctx)
	if releaseErr != nil {
		releaseErr = fmt.Errorf("catalog: release cover of %s: %w", id, releaseErr)
	}

	catalog.emit(Event{Kind: EventRemoved, Entry: entry, Index: index})

	catalog.logger.Info("entry_removed",
		slog.String("entry_id", id),
		slog.Int("size", len(catalog.entries)),
	)
	return catalog.Entries(), true, releaseErr
}

/*
Sort reorders the sequence by criterion.

Description: Unrecognised criteria (including [CriterionNone]) leave the sequence
untouched and emit nothing. The sort is stable: entries with equal keys keep
their relative order. Afterwards one [EventReordered] is emitted so every
rendered card is rebuilt.

Returns:
  - []*Entry: The sequence after the call (a copy)
  - bool: Whether a sort happened
*/
func (catalog *Catalog) Sort(criterion Criterion) ([]*Entry, bool) {
	compare := criterion.comparator(catalog.tag)
	if compare == nil {
		return catalog.Entries(), false
	}

	slices.SortStableFunc(catalog.entries, compare)
	catalog.criterion = criterion

	snapshot := catalog.Entries()
	catalog.emit(Event{Kind: EventReordered, Entries: snapshot})

	catalog.logger.Info("catalog_sorted",
		slog.String("criterion", string(criterion)),
		slog.Int("size", len(snapshot)),
	)
	return snapshot, true
}

/*
Clear disposes every entry and empties the sequence.

Description: Used when a session ends. Every cover is released even if some
releases fail; the failures are joined. Subscribers see one [EventReordered]
with an empty sequence.
*/
func (catalog *Catalog) Clear(ctx context.Context) error {
	var errs []error
	for _, entry := range catalog.entries {
		if err := entry.Dispose(ctx); err != nil {
			errs = append(errs, fmt.Errorf("catalog: release cover of %s: %w", entry.ID, err))
		}
	}

	catalog.entries = nil
	catalog.emit(Event{Kind: EventReordered, Entries: nil})
	return errors.Join(errs...)
}

// Entries returns a copy of the sequence.
func (catalog *Catalog) Entries() []*Entry {
	return slices.Clone(catalog.entries)
}

// Get looks an entry up by id.
func (catalog *Catalog) Get(id string) (*Entry, bool) {
	index := catalog.indexOf(id)
	if index < 0 {
		return nil, false
	}
	return catalog.entries[index], true
}

// Len returns the number of entries.
func (catalog *Catalog) Len() int {
	return len(catalog.entries)
}

// Criterion returns the last criterion a sort was applied with.
func (catalog *Catalog) Criterion() Criterion {
	return catalog.criterion
}

func (catalog *Catalog) indexOf(id string) int {
	return slices.IndexFunc(catalog.entries, func(entry *Entry) bool { return entry.ID == id })
}
