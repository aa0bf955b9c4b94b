// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package render is the presentation layer of the catalog page.

It never mutates catalog state. A [View] subscribes to catalog events and keeps
one rendered card per entry, in the same order as the catalog sequence. The
page template then stitches those cards together.

Card lifecycle:

  - Added: exactly one new card is built and appended.
  - Removed: exactly the matching card is dropped.
  - Reordered: every card is discarded and rebuilt in the new order, so each
    gets a new node identity.
*/
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/pkg/slice"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed page and card templates.
type Templates struct {
	set *template.Template
}

// LoadTemplates parses the embedded templates.
func LoadTemplates() (*Templates, error) {
	set, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Templates{set: set}, nil
}

// MustLoadTemplates is [LoadTemplates] for startup wiring and tests.
func MustLoadTemplates() *Templates {
	templates, err := LoadTemplates()
	if err != nil {
		panic(err)
	}
	return templates
}

// SortOption is one entry of the sort control.
type SortOption struct {
	Value    string
	Label    string
	Selected bool
}

// PageData is everything the index template needs.
type PageData struct {
	Title   string
	Count   int
	Cards   []Card
	Options []SortOption
}

// Page writes the full catalog page.
func (templates *Templates) Page(writer io.Writer, data PageData) error {
	return templates.set.ExecuteTemplate(writer, "index", data)
}

// card renders one card fragment. The result is escaped by html/template.
func (templates *Templates) card(data cardData) (template.HTML, error) {
	var buffer bytes.Buffer
	if err := templates.set.ExecuteTemplate(&buffer, "card", data); err != nil {
		return "", fmt.Errorf("render: card %s: %w", data.ID, err)
	}
	return template.HTML(buffer.String()), nil
}

// criterionLabels are the captions shown in the sort control.
var criterionLabels = map[catalog.Criterion]string{
	catalog.CriterionYearAsc:   "Year (oldest first)",
	catalog.CriterionYearDesc:  "Year (newest first)",
	catalog.CriterionTitleAsc:  "Title (A-Z)",
	catalog.CriterionAuthorAsc: "Author (A-Z)",
}

// SortOptions builds the sort control with current preselected.
func SortOptions(current catalog.Criterion) []SortOption {
	return slice.Map(catalog.Criteria(), func(criterion catalog.Criterion) SortOption {
		return SortOption{
			Value:    string(criterion),
			Label:    criterionLabels[criterion],
			Selected: criterion == current,
		}
	})
}
