// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/taibuivan/bookshelf/internal/core/catalog"
	"github.com/taibuivan/bookshelf/internal/core/cover"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder collects every event a catalog emits.
type recorder struct {
	events []catalog.Event
}

func (r *recorder) listen(event catalog.Event) {
	r.events = append(r.events, event)
}

func newCatalog(t *testing.T) (*catalog.Catalog, *recorder) {
	t.Helper()
	c := catalog.New(language.English, discardLogger())
	rec := &recorder{}
	c.Subscribe(rec.listen)
	return c, rec
}

// countingRelease returns a release func and a pointer to how often it ran.
func countingRelease() (catalog.ReleaseFunc, *int) {
	calls := 0
	return func(context.Context) error {
		calls++
		return nil
	}, &calls
}

func book(title, author, year string) *catalog.Entry {
	return catalog.NewEntry(title, author, year, cover.NewHandle(), nil)
}

func titles(entries []*catalog.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Title)
	}
	return out
}

/*
TestParseYear covers the lenient numeric coercion of the year field.
*/
func TestParseYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value int
		valid bool
	}{
		{"plain", "1965", 1965, true},
		{"surrounding_space", "  1949 ", 1949, true},
		{"negative", "-44", -44, true},
		{"decimal_truncates", "1965.7", 1965, true},
		{"negative_decimal_truncates_toward_zero", "-3.9", -3, true},
		{"exponent", "1e3", 1000, true},
		{"far_future_allowed", "30000", 30000, true},
		{"word", "abc", 0, false},
		{"empty", "", 0, false},
		{"trailing_garbage", "12abc", 0, false},
		{"nan_literal", "NaN", 0, false},
		{"infinity", "Inf", 0, false},
		{"overflow", "1e300", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year := catalog.ParseYear(tt.input)
			assert.Equal(t, tt.valid, year.Valid)
			if tt.valid {
				assert.Equal(t, tt.value, year.Value)
			}
		})
	}
}

/*
TestYear_Rendering checks the display and JSON forms of valid and invalid years.
*/
func TestYear_Rendering(t *testing.T) {
	assert.Equal(t, "1965", catalog.ParseYear("1965").String())
	assert.Equal(t, "NaN", catalog.ParseYear("soon").String())

	raw, err := json.Marshal(book("Dune", "Frank Herbert", "soon"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["year"])
	assert.Contains(t, decoded["cover_url"], "/covers/")
}

/*
TestNewEntry_TrimsAndAssignsUniqueIDs checks construction-time normalisation.
*/
func TestNewEntry_TrimsAndAssignsUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		entry := book("  Dune ", " Frank Herbert", "1965")
		assert.Equal(t, "Dune", entry.Title)
		assert.Equal(t, "Frank Herbert", entry.Author)
		assert.False(t, seen[entry.ID], "id reused: %s", entry.ID)
		seen[entry.ID] = true
	}
}

/*
TestEntry_Dispose_RunsOnce ensures the cover release never fires twice.
*/
func TestEntry_Dispose_RunsOnce(t *testing.T) {
	release, calls := countingRelease()
	entry := catalog.NewEntry("Dune", "Frank Herbert", "1965", cover.NewHandle(), release)

	assert.False(t, entry.Disposed())
	require.NoError(t, entry.Dispose(context.Background()))
	require.NoError(t, entry.Dispose(context.Background()))

	assert.True(t, entry.Disposed())
	assert.Equal(t, 1, *calls)
}

/*
TestCatalog_Add appends in insertion order and emits one event per entry.
*/
func TestCatalog_Add(t *testing.T) {
	c, rec := newCatalog(t)

	dune := book("Dune", "Frank Herbert", "1965")
	orwell := book("1984", "George Orwell", "1949")

	c.Add(dune)
	entries := c.Add(orwell)

	assert.Equal(t, []string{"Dune", "1984"}, titles(entries))
	assert.Equal(t, 2, c.Len())

	require.Len(t, rec.events, 2)
	assert.Equal(t, catalog.EventAdded, rec.events[1].Kind)
	assert.Same(t, orwell, rec.events[1].Entry)
	assert.Equal(t, 1, rec.events[1].Index)

	got, ok := c.Get(dune.ID)
	require.True(t, ok)
	assert.Same(t, dune, got)
}

/*
TestCatalog_Add_DuplicateIgnored keeps ids unique within a catalog.
*/
func TestCatalog_Add_DuplicateIgnored(t *testing.T) {
	c, rec := newCatalog(t)
	dune := book("Dune", "Frank Herbert", "1965")

	c.Add(dune)
	c.Add(dune)

	assert.Equal(t, 1, c.Len())
	assert.Len(t, rec.events, 1)
}

/*
TestCatalog_Entries_ReturnsCopy makes sure callers cannot reorder the catalog.
*/
func TestCatalog_Entries_ReturnsCopy(t *testing.T) {
	c, _ := newCatalog(t)
	c.Add(book("Dune", "Frank Herbert", "1965"))
	c.Add(book("1984", "George Orwell", "1949"))

	entries := c.Entries()
	entries[0], entries[1] = entries[1], entries[0]

	assert.Equal(t, []string{"Dune", "1984"}, titles(c.Entries()))
}

/*
TestCatalog_Remove drops the entry, disposes it once and emits one event.
*/
func TestCatalog_Remove(t *testing.T) {
	c, rec := newCatalog(t)

	release, calls := countingRelease()
	dune := catalog.NewEntry("Dune", "Frank Herbert", "1965", cover.NewHandle(), release)
	orwell := book("1984", "George Orwell", "1949")
	c.Add(dune)
	c.Add(orwell)

	entries, removed, err := c.Remove(context.Background(), dune.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"1984"}, titles(entries))
	assert.Equal(t, 1, *calls)
	assert.True(t, dune.Disposed())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, catalog.EventRemoved, last.Kind)
	assert.Same(t, dune, last.Entry)
	assert.Equal(t, 0, last.Index)

	// Second removal of the same id is a no-op
	_, removed, err = c.Remove(context.Background(), dune.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, *calls)
}

/*
TestCatalog_Remove_UnknownID leaves the catalog and subscribers untouched.
*/
func TestCatalog_Remove_UnknownID(t *testing.T) {
	c, rec := newCatalog(t)
	c.Add(book("Dune", "Frank Herbert", "1965"))

	entries, removed, err := c.Remove(context.Background(), "does-not-exist")

	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, entries, 1)
	assert.Len(t, rec.events, 1)
}

/*
TestCatalog_Remove_ReleaseFailure still removes the entry and reports the error.
*/
func TestCatalog_Remove_ReleaseFailure(t *testing.T) {
	c, rec := newCatalog(t)
	boom := errors.New("store unavailable")
	entry := catalog.NewEntry("Dune", "Frank Herbert", "1965", cover.NewHandle(),
		func(context.Context) error { return boom })
	c.Add(entry)

	_, removed, err := c.Remove(context.Background(), entry.ID)

	assert.True(t, removed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, catalog.EventRemoved, rec.events[len(rec.events)-1].Kind)
}

/*
TestCatalog_Sort_SmallestExample reorders two books by year and by title.
*/
func TestCatalog_Sort_SmallestExample(t *testing.T) {
	for _, criterion := range []catalog.Criterion{catalog.CriterionYearAsc, catalog.CriterionTitleAsc} {
		t.Run(string(criterion), func(t *testing.T) {
			c, rec := newCatalog(t)
			c.Add(book("Dune", "Frank Herbert", "1965"))
			c.Add(book("1984", "George Orwell", "1949"))

			entries, sorted := c.Sort(criterion)

			assert.True(t, sorted)
			assert.Equal(t, []string{"1984", "Dune"}, titles(entries))
			assert.Equal(t, criterion, c.Criterion())

			last := rec.events[len(rec.events)-1]
			assert.Equal(t, catalog.EventReordered, last.Kind)
			assert.Equal(t, []string{"1984", "Dune"}, titles(last.Entries))
		})
	}
}

/*
TestCatalog_Sort_Criteria covers each ordering including ties and non-numeric years.
*/
func TestCatalog_Sort_Criteria(t *testing.T) {
	seed := func(c *catalog.Catalog) {
		c.Add(book("Zola Works", "Émile Zola", "2000"))
		c.Add(book("apple pie", "Zadie Smith", "unknown"))
		c.Add(book("Banana Split", "anne Rice", "1990"))
		c.Add(book("Émile", "Bram Stoker", "2000"))
	}

	tests := []struct {
		criterion catalog.Criterion
		want      []string
	}{
		// Ties on 2000 keep insertion order; the non-numeric year goes last
		{catalog.CriterionYearAsc, []string{"Banana Split", "Zola Works", "Émile", "apple pie"}},
		{catalog.CriterionYearDesc, []string{"Zola Works", "Émile", "Banana Split", "apple pie"}},
		// Collation ignores case and sorts accented letters with their base letter
		{catalog.CriterionTitleAsc, []string{"apple pie", "Banana Split", "Émile", "Zola Works"}},
		{catalog.CriterionAuthorAsc, []string{"Banana Split", "Émile", "Zola Works", "apple pie"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.criterion), func(t *testing.T) {
			c, _ := newCatalog(t)
			seed(c)

			entries, sorted := c.Sort(tt.criterion)
			require.True(t, sorted)
			assert.Equal(t, tt.want, titles(entries))
		})
	}
}

/*
TestCatalog_Sort_IsStableAcrossRepeats sorting twice by the same key changes nothing.
*/
func TestCatalog_Sort_IsStableAcrossRepeats(t *testing.T) {
	c, _ := newCatalog(t)
	c.Add(book("A", "X", "2000"))
	c.Add(book("B", "X", "2000"))
	c.Add(book("C", "X", "2000"))

	first, _ := c.Sort(catalog.CriterionAuthorAsc)
	second, _ := c.Sort(catalog.CriterionAuthorAsc)

	assert.Equal(t, []string{"A", "B", "C"}, titles(first))
	assert.Equal(t, titles(first), titles(second))
}

/*
TestCatalog_Sort_Unknown is a no-op that emits nothing.
*/
func TestCatalog_Sort_Unknown(t *testing.T) {
	c, rec := newCatalog(t)
	c.Add(book("Dune", "Frank Herbert", "1965"))
	c.Add(book("1984", "George Orwell", "1949"))

	for _, criterion := range []catalog.Criterion{catalog.CriterionNone, "price-asc"} {
		entries, sorted := c.Sort(criterion)
		assert.False(t, sorted)
		assert.Equal(t, []string{"Dune", "1984"}, titles(entries))
	}

	assert.Len(t, rec.events, 2)
	assert.Equal(t, catalog.CriterionNone, c.Criterion())
}

/*
TestCatalog_Sort_Empty still announces the (empty) reorder.
*/
func TestCatalog_Sort_Empty(t *testing.T) {
	c, rec := newCatalog(t)

	entries, sorted := c.Sort(catalog.CriterionYearAsc)

	assert.True(t, sorted)
	assert.Empty(t, entries)
	require.Len(t, rec.events, 1)
	assert.Equal(t, catalog.EventReordered, rec.events[0].Kind)
}

/*
TestCatalog_Clear disposes every entry, even when some releases fail.
*/
func TestCatalog_Clear(t *testing.T) {
	c, rec := newCatalog(t)

	release, calls := countingRelease()
	boom := errors.New("store unavailable")
	c.Add(catalog.NewEntry("Dune", "Frank Herbert", "1965", cover.NewHandle(), release))
	c.Add(catalog.NewEntry("1984", "George Orwell", "1949", cover.NewHandle(),
		func(context.Context) error { return boom }))
	c.Add(catalog.NewEntry("Emma", "Jane Austen", "1815", cover.NewHandle(), release))

	err := c.Clear(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 0, c.Len())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, catalog.EventReordered, last.Kind)
	assert.Empty(t, last.Entries)
}

/*
TestParseCriterion accepts canonical values and long aliases only.
*/
func TestParseCriterion(t *testing.T) {
	tests := []struct {
		raw  string
		want catalog.Criterion
		ok   bool
	}{
		{"year-asc", catalog.CriterionYearAsc, true},
		{"year-ascending", catalog.CriterionYearAsc, true},
		{"year-descending", catalog.CriterionYearDesc, true},
		{"title-asc", catalog.CriterionTitleAsc, true},
		{"author-ascending", catalog.CriterionAuthorAsc, true},
		{"", catalog.CriterionNone, false},
		{"YEAR-ASC", catalog.CriterionNone, false},
		{"price-asc", catalog.CriterionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := catalog.ParseCriterion(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, catalog.Criteria(), 4)
}
