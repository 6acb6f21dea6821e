// Package search implements the per-table text index: folded tokens, exact
// matching for numeric codes, prefix and bounded fuzzy matching for words, and
// a two-level ranking (priority tier, then relevance score).
package search

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Match qualities relative to an exact term hit.
const (
	exactQuality  = 1.0
	prefixQuality = 0.6
	fuzzyQuality  = 0.5

	// DefaultFuzzyRatio bounds edits to 20% of the query token length.
	DefaultFuzzyRatio = 0.2
)

// Priority tiers. Higher tiers always rank first.
const (
	TierNone   = 0
	TierPrefix = 1
	TierExact  = 2
)

// Field declares one indexed field of a row type.
type Field[T any] struct {
	Name   string
	Weight float64
	Value  func(*T) string
}

// Options configures an index.
type Options[T any] struct {
	Fields []Field[T]
	// Primary is the display field used for tiering. It must also be indexed.
	Primary func(*T) string
	// FuzzyRatio is the allowed edit distance as a fraction of the token length.
	FuzzyRatio float64
}

// Hit is one scored match.
type Hit struct {
	Row   int
	Score float64
	Tier  int
}

type posting struct {
	row   int32
	field uint8
	tf    uint16
}

// Index is an immutable inverted index over a row slice. It is safe for
// concurrent use once built.
type Index[T any] struct {
	rows     []T
	weights  []float64
	primary  []string
	postings map[string][]posting
	terms    []string         // sorted, for prefix expansion
	byLength map[int][]string // rune length -> terms, for fuzzy candidates
	ratio    float64
}

// New indexes rows with the given options. rows must not be mutated afterwards.
func New[T any](rows []T, opts Options[T]) *Index[T] {
	ix := &Index[T]{
		rows:     rows,
		weights:  make([]float64, len(opts.Fields)),
		primary:  make([]string, len(rows)),
		postings: make(map[string][]posting),
		byLength: make(map[int][]string),
		ratio:    opts.FuzzyRatio,
	}
	if ix.ratio <= 0 {
		ix.ratio = DefaultFuzzyRatio
	}
	for f, field := range opts.Fields {
		ix.weights[f] = field.Weight
		if ix.weights[f] <= 0 {
			ix.weights[f] = 1
		}
	}

	counts := make(map[string]uint16)
	for i := range rows {
		row := &rows[i]
		if opts.Primary != nil {
			ix.primary[i] = Canonical(opts.Primary(row))
		}
		for f, field := range opts.Fields {
			clear(counts)
			for _, tok := range Tokenize(field.Value(row)) {
				if counts[tok] < math.MaxUint16 {
					counts[tok]++
				}
			}
			for tok, tf := range counts {
				ix.postings[tok] = append(ix.postings[tok], posting{row: int32(i), field: uint8(f), tf: tf})
			}
		}
	}

	ix.terms = make([]string, 0, len(ix.postings))
	for term := range ix.postings {
		ix.terms = append(ix.terms, term)
		n := utf8.RuneCountInString(term)
		ix.byLength[n] = append(ix.byLength[n], term)
	}
	sort.Strings(ix.terms)
	return ix
}

// Len returns the number of indexed rows.
func (ix *Index[T]) Len() int {
	return len(ix.rows)
}

// Rows returns every row in source order. The slice is shared and read-only.
func (ix *Index[T]) Rows() []T {
	return ix.rows
}

// Terms returns the number of distinct indexed terms.
func (ix *Index[T]) Terms() int {
	return len(ix.terms)
}

// Search returns matching rows ordered by tier then score. A blank query
// returns every row in source order.
func (ix *Index[T]) Search(query string) []T {
	if strings.TrimSpace(query) == "" {
		return ix.rows
	}
	hits := ix.Hits(query)
	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = ix.rows[h.Row]
	}
	return out
}

// All returns every row, type-erased.
func (ix *Index[T]) All() Results {
	return Slice[T](ix.rows)
}

// Query is Search, type-erased.
func (ix *Index[T]) Query(query string) Results {
	return Slice[T](ix.Search(query))
}

// Hits scores every row matching all query tokens. Numeric tokens only match
// identical terms; other tokens also match by prefix and within the fuzzy
// edit budget.
func (ix *Index[T]) Hits(query string) []Hit {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []Hit{}
	}

	var total map[int32]float64
	for _, tok := range tokens {
		scores := ix.scoreToken(tok)
		if total == nil {
			total = scores
		} else {
			for row, s := range total {
				if ts, ok := scores[row]; ok {
					total[row] = s + ts
				} else {
					delete(total, row)
				}
			}
		}
		if len(total) == 0 {
			return []Hit{}
		}
	}

	canonical := strings.Join(tokens, " ")
	hits := make([]Hit, 0, len(total))
	for row, score := range total {
		hits = append(hits, Hit{Row: int(row), Score: score, Tier: ix.tier(int(row), canonical)})
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Tier, a.Tier); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})
	return hits
}

func (ix *Index[T]) tier(row int, canonical string) int {
	primary := ix.primary[row]
	switch {
	case primary == canonical:
		return TierExact
	case strings.HasPrefix(primary, canonical):
		return TierPrefix
	}
	return TierNone
}

// scoreToken returns, per row, the best score any expansion of tok reaches.
func (ix *Index[T]) scoreToken(tok string) map[int32]float64 {
	scores := make(map[int32]float64)
	add := func(term string, quality float64) {
		list := ix.postings[term]
		idf := math.Log(1 + float64(len(ix.rows))/float64(len(list)))
		for _, p := range list {
			s := ix.weights[p.field] * quality * idf * (1 + math.Log(float64(p.tf)))
			if s > scores[p.row] {
				scores[p.row] = s
			}
		}
	}

	if _, ok := ix.postings[tok]; ok {
		add(tok, exactQuality)
	}
	if IsNumeric(tok) {
		return scores
	}

	for i := sort.SearchStrings(ix.terms, tok); i < len(ix.terms) && strings.HasPrefix(ix.terms[i], tok); i++ {
		if ix.terms[i] != tok {
			add(ix.terms[i], prefixQuality)
		}
	}

	length := utf8.RuneCountInString(tok)
	maxEdits := int(float64(length) * ix.ratio)
	if maxEdits == 0 {
		return scores
	}
	for n := length - maxEdits; n <= length+maxEdits; n++ {
		for _, term := range ix.byLength[n] {
			if strings.HasPrefix(term, tok) || IsNumeric(term) {
				continue
			}
			d := edlib.LevenshteinDistance(tok, term)
			if d > 0 && d <= maxEdits {
				add(term, fuzzyQuality/float64(d+1))
			}
		}
	}
	return scores
}
