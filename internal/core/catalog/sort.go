// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// # Sort Criteria

// Criterion names an ordering of the catalog.
type Criterion string

const (
	// CriterionNone is the unset state of the sort control. Sorting by it is a no-op.
	CriterionNone Criterion = ""

	CriterionYearAsc   Criterion = "year-asc"
	CriterionYearDesc  Criterion = "year-desc"
	CriterionTitleAsc  Criterion = "title-asc"
	CriterionAuthorAsc Criterion = "author-asc"
)

// aliases maps the long spellings onto the canonical criteria.
var aliases = map[string]Criterion{
	"year-ascending":   CriterionYearAsc,
	"year-descending":  CriterionYearDesc,
	"title-ascending":  CriterionTitleAsc,
	"author-ascending": CriterionAuthorAsc,
}

// Criteria lists the recognised criteria in the order the sort control offers them.
func Criteria() []Criterion {
	return []Criterion{CriterionYearAsc, CriterionYearDesc, CriterionTitleAsc, CriterionAuthorAsc}
}

// ParseCriterion resolves a raw control value. Unknown values report false.
func ParseCriterion(raw string) (Criterion, bool) {
	if alias, ok := aliases[raw]; ok {
		return alias, true
	}

	criterion := Criterion(raw)
	switch criterion {
	case CriterionYearAsc, CriterionYearDesc, CriterionTitleAsc, CriterionAuthorAsc:
		return criterion, true
	}
	return CriterionNone, false
}

// comparator returns the ordering for c, collating text under tag.
//
// A collator keeps internal buffers, so a new one is built per sort.
func (c Criterion) comparator(tag language.Tag) func(a, b *Entry) int {
	switch c {
	case CriterionYearAsc:
		return func(a, b *Entry) int { return compareYears(a.Year, b.Year, false) }
	case CriterionYearDesc:
		return func(a, b *Entry) int { return compareYears(a.Year, b.Year, true) }
	case CriterionTitleAsc:
		collator := collate.New(tag)
		return func(a, b *Entry) int { return collator.CompareString(a.Title, b.Title) }
	case CriterionAuthorAsc:
		collator := collate.New(tag)
		return func(a, b *Entry) int { return collator.CompareString(a.Author, b.Author) }
	}
	return nil
}

// compareYears orders numeric years and puts non-numeric ones last in either direction.
func compareYears(a, b Year, descending bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	case descending:
		return cmp.Compare(b.Value, a.Value)
	default:
		return cmp.Compare(a.Value, b.Value)
	}
}
