// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// tokenPattern accepts runs of word characters (any letter, digit or
// underscore). CJK ideograph runs are letters, so a pre-segmented CJK word
// stays one token and an unsegmented run stays whole.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// posting is one (row, weight) entry of a term column.
type posting struct {
	row    int
	weight float64
}

// TFIDFMatrix is a row-normalized TF-IDF document-term matrix with a
// column index for fast one-against-all cosine queries.
type TFIDFMatrix struct {
	// Vocabulary is sorted; its position is the column index.
	Vocabulary []string

	// IDF holds the smoothed inverse document frequency per column.
	IDF []float64

	// Rows holds one L2-normalized vector per document.
	Rows []recommend.SparseVector

	columns [][]posting
}

// tokenize splits a document into lower-cased tokens.
func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// FitTFIDF fits term weights over docs:
//
//	tf(t, d)  = raw count of t in d
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	row(d)    = tf * idf, scaled to unit L2 norm
//
// A corpus without tokens yields an empty vocabulary and all-zero rows.
func FitTFIDF(docs []string) *TFIDFMatrix {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := make(map[string]int)

	for i, doc := range docs {
		tc := make(map[string]int)
		for _, tok := range tokenize(doc) {
			tc[tok]++
		}
		for tok := range tc {
			df[tok]++
		}
		counts[i] = tc
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	for col, tok := range vocab {
		index[tok] = col
		idf[col] = math.Log(float64(1+n)/float64(1+df[tok])) + 1
	}

	m := &TFIDFMatrix{
		Vocabulary: vocab,
		IDF:        idf,
		Rows:       make([]recommend.SparseVector, n),
		columns:    make([][]posting, len(vocab)),
	}

	for row, tc := range counts {
		cols := make([]int, 0, len(tc))
		for tok := range tc {
			cols = append(cols, index[tok])
		}
		sort.Ints(cols)

		values := make([]float64, len(cols))
		var norm float64
		for i, col := range cols {
			w := float64(tc[vocab[col]]) * idf[col]
			values[i] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range values {
				values[i] /= norm
			}
		}

		m.Rows[row] = recommend.SparseVector{Indices: cols, Values: values}
		for i, col := range cols {
			m.columns[col] = append(m.columns[col], posting{row: row, weight: values[i]})
		}
	}

	return m
}

// NumRows returns the number of documents.
func (m *TFIDFMatrix) NumRows() int {
	return len(m.Rows)
}

// CosineInto adds weight * cosine(row, r) to out[r] for every row r.
// Rows are unit length, so the cosine is their dot product; all-zero rows
// contribute nothing.
func (m *TFIDFMatrix) CosineInto(out []float64, row int, weight float64) {
	q := m.Rows[row]
	for i, col := range q.Indices {
		qv := q.Values[i] * weight
		for _, p := range m.columns[col] {
			out[p.row] += qv * p.weight
		}
	}
}

// Cosine returns the cosine similarity of row against every row.
func (m *TFIDFMatrix) Cosine(row int) []float64 {
	out := make([]float64, len(m.Rows))
	m.CosineInto(out, row, 1)
	return out
}
