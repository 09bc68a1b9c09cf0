// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"sort"
)

// Combine fuses a content-ranked list and a collaborative-ranked list into
// one ranking:
//
//	combined = w*content + (1-w)*cf
//
// Entries are keyed by ItemID, or by Title when ItemID is empty, so two
// movies sharing a title stay apart when their ids are known. Every key
// from either list is scored; a side that lacks the key contributes 0.
// When a key occurs more than once in one list the first (highest ranked)
// entry is kept. Results are sorted by combined score descending with ties
// broken by ascending title, then item id.
func Combine(content, cf []TitleScore, contentWeight float64) ([]CombinedScore, error) {
	if err := ValidateContentWeight(contentWeight); err != nil {
		return nil, err
	}
	cfWeight := 1 - contentWeight

	byKey := make(map[string]*CombinedScore, len(content)+len(cf))
	seenContent := make(map[string]struct{}, len(content))
	seenCF := make(map[string]struct{}, len(cf))

	entry := func(ts TitleScore) *CombinedScore {
		key := ts.Key()
		cs, ok := byKey[key]
		if !ok {
			cs = &CombinedScore{Title: ts.Title, ItemID: ts.ItemID}
			byKey[key] = cs
		}
		return cs
	}

	for _, ts := range content {
		if _, dup := seenContent[ts.Key()]; dup {
			continue
		}
		seenContent[ts.Key()] = struct{}{}
		entry(ts).ContentScore = ts.Score
	}
	for _, ts := range cf {
		if _, dup := seenCF[ts.Key()]; dup {
			continue
		}
		seenCF[ts.Key()] = struct{}{}
		entry(ts).CFScore = ts.Score
	}

	out := make([]CombinedScore, 0, len(byKey))
	for _, cs := range byKey {
		cs.CombinedScore = contentWeight*cs.ContentScore + cfWeight*cs.CFScore
		out = append(out, *cs)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ItemID < out[j].ItemID
	})

	return out, nil
}
