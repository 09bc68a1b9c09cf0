// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package textnorm cleans and segments mixed Latin and CJK text into
// space-joined token strings ready for term weighting.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	// disallowedRunes matches anything that is not a word character,
	// whitespace or a CJK unified ideograph.
	disallowedRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}\x{4e00}-\x{9fff}]`)

	// latinWord matches a maximal run of lower-case ASCII letters.
	latinWord = regexp.MustCompile(`[a-z]+`)
)

// stopwords is the fixed bilingual function word list.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},

	"的": {}, "了": {}, "和": {}, "是": {}, "就": {}, "都": {}, "而": {}, "及": {}, "与": {}, "着": {},
	"把": {}, "让": {}, "向": {}, "在": {}, "由": {}, "这": {}, "那": {}, "到": {}, "去": {}, "又": {},
}

// IsStopword reports whether token is in the bilingual stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Normalizer turns raw catalog text into token strings.
// It is safe for concurrent use once constructed.
type Normalizer struct {
	seg Segmenter
}

// New returns a Normalizer that segments CJK text with seg.
// A nil seg falls back to whitespace splitting.
func New(seg Segmenter) *Normalizer {
	if seg == nil {
		seg = whitespaceSegmenter{}
	}
	return &Normalizer{seg: seg}
}

// Clean strips punctuation and symbols, lower-cases ASCII letters and
// collapses whitespace. It is the full treatment for short categorical
// fields such as genres or names.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	text := disallowedRunes.ReplaceAllString(raw, " ")
	text = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// Normalize applies Clean. It exists so short and long-form features share
// one call shape.
func (n *Normalizer) Normalize(raw string) string {
	return Clean(raw)
}

// Tokenize is the long-form treatment used for overviews and keywords:
// Latin words are kept whole, the remaining text is word-segmented, and
// stopwords are dropped. Latin tokens come first, in source order.
func (n *Normalizer) Tokenize(raw string) string {
	text := Clean(raw)
	if text == "" {
		return ""
	}

	latin := latinWord.FindAllString(text, -1)
	rest := latinWord.ReplaceAllString(text, "")

	tokens := make([]string, 0, len(latin)+8)
	tokens = append(tokens, latin...)
	if strings.TrimSpace(rest) != "" {
		for _, w := range n.seg.Cut(rest) {
			if strings.TrimSpace(w) != "" {
				tokens = append(tokens, w)
			}
		}
	}

	kept := tokens[:0]
	for _, tok := range tokens {
		if !IsStopword(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// Text normalizes raw for a feature; longForm selects Tokenize over Normalize.
func (n *Normalizer) Text(raw string, longForm bool) string {
	if longForm {
		return n.Tokenize(raw)
	}
	return n.Normalize(raw)
}
