// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package identity

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// TitleKey strips a trailing " (year)" part and lower-cases the rest:
// "Toy Story (1995)" -> "toy story". Only the last " (" is split on.
func TitleKey(titleYear string) string {
	title := titleYear
	if i := strings.LastIndex(titleYear, " ("); i >= 0 {
		title = titleYear[:i]
	}
	return strings.ToLower(title)
}

type titleEntry struct {
	key     string
	display string
	itemID  string
	runes   []string
}

// TitleIndex is an immutable fuzzy index from lower-cased titles to item ids.
// When two entries share a key the later one wins.
type TitleIndex struct {
	entries []titleEntry
	byKey   map[string]int
}

// NewTitleIndex indexes a ratings-side catalog by TitleKey.
func NewTitleIndex(catalog []recommend.CatalogEntry) *TitleIndex {
	ti := &TitleIndex{byKey: make(map[string]int, len(catalog))}
	for _, e := range catalog {
		display := e.TitleYear
		if i := strings.LastIndex(display, " ("); i >= 0 {
			display = display[:i]
		}
		ti.add(TitleKey(e.TitleYear), display, e.ItemID)
	}
	return ti
}

// NewMovieTitleIndex indexes enriched movies by their plain title.
func NewMovieTitleIndex(movies []recommend.Movie) *TitleIndex {
	ti := &TitleIndex{byKey: make(map[string]int, len(movies))}
	for i := range movies {
		ti.add(strings.ToLower(movies[i].Title), movies[i].Title, movies[i].ItemID)
	}
	return ti
}

func (ti *TitleIndex) add(key, display, itemID string) {
	if key == "" {
		return
	}
	if i, ok := ti.byKey[key]; ok {
		ti.entries[i].display = display
		ti.entries[i].itemID = itemID
		return
	}
	ti.byKey[key] = len(ti.entries)
	ti.entries = append(ti.entries, titleEntry{
		key:     key,
		display: display,
		itemID:  itemID,
		runes:   splitRunes(key),
	})
}

// Len returns the number of distinct keys.
func (ti *TitleIndex) Len() int {
	return len(ti.entries)
}

// Lookup returns the item id for an exact (case-insensitive) key.
func (ti *TitleIndex) Lookup(title string) (string, bool) {
	i, ok := ti.byKey[strings.ToLower(title)]
	if !ok {
		return "", false
	}
	return ti.entries[i].itemID, true
}

// Match returns up to n keys whose character similarity ratio to query is
// at least cutoff, best first. Equal scores order by key descending.
//
// The ratio is 2*M/T over runes, where M counts matched characters of the
// longest-matching-block decomposition and T is the total length. The two
// cheaper upper bounds are checked first.
func (ti *TitleIndex) Match(query string, n int, cutoff float64) []recommend.TitleMatch {
	if n <= 0 || len(ti.entries) == 0 {
		return []recommend.TitleMatch{}
	}

	m := difflib.NewMatcher(nil, splitRunes(strings.ToLower(query)))

	type scored struct {
		entry int
		score float64
	}
	var hits []scored
	for i := range ti.entries {
		m.SetSeq1(ti.entries[i].runes)
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			hits = append(hits, scored{entry: i, score: r})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return ti.entries[hits[a].entry].key > ti.entries[hits[b].entry].key
	})
	if len(hits) > n {
		hits = hits[:n]
	}

	out := make([]recommend.TitleMatch, len(hits))
	for i, h := range hits {
		e := ti.entries[h.entry]
		out[i] = recommend.TitleMatch{Title: e.display, ItemID: e.itemID, Score: h.score}
	}
	return out
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
