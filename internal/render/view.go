// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package render

import (
	"html/template"
	"log/slog"
	"slices"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/pkg/slice"
)

// Card is one rendered list item.
type Card struct {
	// Node identifies this particular rendering. A rebuilt card gets a new Node.
	Node    uint64
	EntryID string
	HTML    template.HTML
}

// cardData is what the card template sees.
type cardData struct {
	ID       string
	Title    string
	Author   string
	Year     string
	CoverURL string
}

// View mirrors a catalog as an ordered list of cards. It is driven only by
// [View.Apply] and shares the catalog's lack of internal locking.
type View struct {
	templates *Templates
	cards     []Card
	nextNode  uint64
	logger    *slog.Logger
}

// NewView creates an empty view.
func NewView(templates *Templates, logger *slog.Logger) *View {
	return &View{templates: templates, logger: logger}
}

// Attach subscribes the view to c and renders whatever c already holds.
func (view *View) Attach(c *catalog.Catalog) {
	view.rebuild(c.Entries())
	c.Subscribe(view.Apply)
}

// Apply updates the cards for one catalog event.
func (view *View) Apply(event catalog.Event) {
	switch event.Kind {
	case catalog.EventAdded:
		view.cards = append(view.cards, view.build(event.Entry))

	case catalog.EventRemoved:
		view.cards = slices.DeleteFunc(view.cards, func(card Card) bool {
			return card.EntryID == event.Entry.ID
		})

	case catalog.EventReordered:
		view.rebuild(event.Entries)
	}
}

// Cards returns a copy of the rendered cards in display order.
func (view *View) Cards() []Card {
	return slices.Clone(view.cards)
}

// Len returns the number of rendered cards.
func (view *View) Len() int {
	return len(view.cards)
}

func (view *View) rebuild(entries []*catalog.Entry) {
	view.cards = slice.Map(entries, view.build)
}

func (view *View) build(entry *catalog.Entry) Card {
	view.nextNode++

	html, err := view.templates.card(cardData{
		ID:       entry.ID,
		Title:    entry.Title,
		Author:   entry.Author,
		Year:     entry.Year.String(),
		CoverURL: entry.Cover.URL(),
	})
	if err != nil {
		// The card still occupies its slot so the list stays aligned with the catalog
		view.logger.Error("card_render_failed", slog.String("entry_id", entry.ID), slog.Any("error", err))
	}

	return Card{Node: view.nextNode, EntryID: entry.ID, HTML: html}
}
