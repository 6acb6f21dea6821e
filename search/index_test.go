package search

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drug struct {
	Cis          string
	Denomination string
	Titulaire    string
}

func drugIndex(rows []drug) *Index[drug] {
	return New(rows, Options[drug]{
		Fields: []Field[drug]{
			{Name: "denomination", Weight: 3, Value: func(d *drug) string { return d.Denomination }},
			{Name: "cis", Weight: 2, Value: func(d *drug) string { return d.Cis }},
			{Name: "titulaire", Weight: 1, Value: func(d *drug) string { return d.Titulaire }},
		},
		Primary: func(d *drug) string { return d.Denomination },
	})
}

var drugs = []drug{
	{Cis: "60234100", Denomination: "DOLIPRANE 1000 mg, comprimé", Titulaire: "OPELLA HEALTHCARE"},
	{Cis: "60234101", Denomination: "DOLIPRANE 500 mg, gélule", Titulaire: "OPELLA HEALTHCARE"},
	{Cis: "61155773", Denomination: "CLAMOXYL 125 mg/5 ml", Titulaire: "GLAXOSMITHKLINE"},
	{Cis: "62000000", Denomination: "PARACÉTAMOL BIOGARAN 1 g", Titulaire: "BIOGARAN"},
	{Cis: "63000000", Denomination: "EFFERALGAN", Titulaire: "UPSA (groupe DOLIPRANE)"},
}

func cisOf(rows []drug) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cis
	}
	return out
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Paracétamol", "paracetamol"},
		{"ÉPHÉDRINE", "ephedrine"},
		{"Gélule à libération prolongée", "gelule a liberation prolongee"},
		{"60234100", "60234100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"clamoxyl", "125", "mg", "5", "ml"}, Tokenize("CLAMOXYL 125 mg/5 ml"))
	assert.Equal(t, []string{"doliprane", "1000", "mg", "comprime"}, Tokenize("DOLIPRANE 1000 mg, comprimé"))
	assert.Empty(t, Tokenize(" ,;- "))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("0001"))
	assert.False(t, IsNumeric("n02be01"))
	assert.False(t, IsNumeric(""))
}

func TestSearch_EmptyQueryReturnsTableInOrder(t *testing.T) {
	ix := drugIndex(drugs)
	assert.Equal(t, drugs, ix.Search(""))
	assert.Equal(t, drugs, ix.Search("   "))
}

func TestSearch_NumericTokenIsExact(t *testing.T) {
	ix := drugIndex(drugs)

	assert.Equal(t, []string{"60234100"}, cisOf(ix.Search("60234100")))
	assert.Empty(t, ix.Search("60234109"), "one digit off must not match")
	assert.Empty(t, ix.Search("6023410"), "numeric tokens have no prefix expansion")
}

func TestSearch_DiacriticInsensitive(t *testing.T) {
	ix := drugIndex(drugs)
	assert.Equal(t, []string{"62000000"}, cisOf(ix.Search("paracetamol")))
	assert.Equal(t, []string{"62000000"}, cisOf(ix.Search("PARACÉTAMOL")))
}

func TestSearch_PrefixMatch(t *testing.T) {
	ix := drugIndex(drugs)
	got := cisOf(ix.Search("clamo"))
	assert.Equal(t, []string{"61155773"}, got)
}

func TestSearch_FuzzyMatch(t *testing.T) {
	ix := drugIndex(drugs)

	got := cisOf(ix.Search("dolipranr"))
	assert.ElementsMatch(t, []string{"60234100", "60234101", "63000000"}, got)

	assert.Empty(t, ix.Search("dolixxxxx"), "beyond the edit budget")
}

func TestSearch_ExactTermOutranksFuzzy(t *testing.T) {
	rows := []drug{
		{Cis: "1", Denomination: "DOLIPRANE"},
		{Cis: "2", Denomination: "DOLIPRANR"},
	}
	ix := drugIndex(rows)

	assert.Equal(t, []string{"2", "1"}, cisOf(ix.Search("dolipranr")))
	assert.Equal(t, []string{"1", "2"}, cisOf(ix.Search("doliprane")))
}

func TestSearch_TierOrdering(t *testing.T) {
	ix := drugIndex(drugs)

	// EFFERALGAN mentions DOLIPRANE only in an auxiliary field: tier 0.
	hits := ix.Hits("doliprane")
	require.Len(t, hits, 3)
	assert.Equal(t, TierPrefix, hits[0].Tier)
	assert.Equal(t, TierPrefix, hits[1].Tier)
	assert.Equal(t, TierNone, hits[2].Tier)
	assert.Equal(t, 4, hits[2].Row)

	exact := ix.Hits("Doliprane 1000 mg comprime")
	require.NotEmpty(t, exact)
	assert.Equal(t, TierExact, exact[0].Tier)
	assert.Equal(t, 0, exact[0].Row)
}

func TestSearch_ExactPrimaryBeatsHighScoringAuxiliaryMatch(t *testing.T) {
	rows := []drug{
		{Cis: "1", Denomination: "IBUPROFENE ARROW", Titulaire: "efferalgan efferalgan efferalgan"},
		{Cis: "2", Denomination: "EFFERALGAN"},
		{Cis: "3", Denomination: "EFFERALGANE VITAMINE C"},
	}
	ix := drugIndex(rows)

	got := cisOf(ix.Search("efferalgan"))
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0])
}

func TestSearch_AllTokensMustMatch(t *testing.T) {
	ix := drugIndex(drugs)
	assert.Equal(t, []string{"60234101"}, cisOf(ix.Search("doliprane 500")))
	assert.Empty(t, ix.Search("doliprane clamoxyl"))
}

func TestSearch_PunctuationOnlyQuery(t *testing.T) {
	ix := drugIndex(drugs)
	assert.Empty(t, ix.Search("!!!"))
}

func TestSearch_ConcurrentQueries(t *testing.T) {
	rows := make([]drug, 0, 500)
	for i := 0; i < 500; i++ {
		rows = append(rows, drug{Cis: fmt.Sprintf("%08d", i), Denomination: fmt.Sprintf("PRODUIT %d comprimé", i)})
	}
	ix := drugIndex(rows)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got := ix.Search(fmt.Sprintf("%08d", i))
			assert.Len(t, got, 1)
		}(i)
	}
	wg.Wait()
}

func TestSlicePage(t *testing.T) {
	s := Slice[int]{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, s.Page(2, 2))
	assert.Equal(t, []int{5}, s.Page(4, 10))
	assert.Equal(t, []int{}, s.Page(10, 2))
	assert.Equal(t, 5, s.Len())
}
