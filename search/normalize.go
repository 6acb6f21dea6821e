package search

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformer chains keep internal state, so each goroutine borrows its own.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	},
}

// Fold applies canonical decomposition, drops combining marks and folds case:
// "Paracétamol" and "PARACETAMOL" both become "paracetamol".
func Fold(s string) string {
	t := foldPool.Get().(transform.Transformer)
	defer foldPool.Put(t)

	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Tokenize folds s and splits it on anything that is not a letter or a digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Fold(s), isSeparator)
}

// Canonical is the folded token sequence joined by single spaces. Tier
// comparisons between a query and a primary field are made on this form.
func Canonical(s string) string {
	return strings.Join(Tokenize(s), " ")
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// IsNumeric reports whether the token is made of decimal digits only.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}
