package medicamentsparser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_StrictRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "CIS_CPD_bdpm.txt",
		"60234100\tListe I\r\n\n61155773\t Prescription hospitalière \n")

	rows, stats, err := ParseFile(path, []string{"cis", "condition"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"60234100", "Liste I"},
		{"61155773", "Prescription hospitalière"},
	}, rows)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 0, stats.Recovered)
	assert.Equal(t, 1, stats.EmptyLines)
	assert.NotZero(t, stats.Digest)
}

func TestParseFile_RecoversMalformedRows(t *testing.T) {
	dir := t.TempDir()
	content := "1\ta\tb\n" + // complete
		"2\tonly\n" + // short row
		"3\tx\x01y\tz\n" + // stray control character
		"4\ta\tb\tc\n" + // extra non-empty column
		"5\ta\tb\t\n" // trailing empty column is fine
	path := writeFile(t, dir, "file.txt", content)

	rows, stats, err := ParseFile(path, []string{"c1", "c2", "c3"})
	require.NoError(t, err)

	require.Len(t, rows, 5)
	assert.Equal(t, []string{"1", "a", "b"}, rows[0])
	assert.Equal(t, []string{"2", "only", ""}, rows[1])
	assert.Equal(t, []string{"3", "xy", "z"}, rows[2])
	assert.Equal(t, []string{"4", "a", "b"}, rows[3])
	assert.Equal(t, []string{"5", "a", "b"}, rows[4])
	assert.Equal(t, 3, stats.Recovered)
}

func TestParseFile_OversizedLine(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 2<<20)
	path := writeFile(t, dir, "CIS_CPD_bdpm.txt",
		"60234100\tListe I\n60000001\t"+long+"\n61155773\tListe II")

	rows, stats, err := ParseFile(path, []string{"cis", "condition"})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"60234100", "Liste I"}, rows[0])
	assert.Equal(t, "60000001", rows[1][0])
	assert.Len(t, rows[1][1], 2<<20)
	assert.Equal(t, []string{"61155773", "Liste II"}, rows[2])
	assert.Equal(t, 3, stats.Rows)
}

func TestParseFile_MissingFile(t *testing.T) {
	rows, stats, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt"), []string{"cis"})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
	assert.True(t, stats.Missing)
}

func TestParseFile_StripsBOM(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bom.txt", "\xEF\xBB\xBF0001\tfirst\n")

	rows, _, err := ParseFile(path, []string{"cis", "condition"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0001", rows[0][0], "leading zeros and BOM handling")
}

func TestDeriveSubstances(t *testing.T) {
	compositions := []entities.Composition{
		{Cis: "1", CodeSubstance: "S1", DenominationSubstance: "PARACÉTAMOL"},
		{Cis: "2", CodeSubstance: "S2", DenominationSubstance: "IBUPROFÈNE"},
		{Cis: "3", CodeSubstance: "S1", DenominationSubstance: "PARACETAMOL (autre libellé)"},
		{Cis: "4", CodeSubstance: "", DenominationSubstance: "ignored"},
	}

	substances := DeriveSubstances(compositions)

	require.Len(t, substances, 2)
	assert.Equal(t, entities.Substance{Code: "S1", Denomination: "PARACÉTAMOL", MedicamentsCount: 2}, substances[0])
	assert.Equal(t, entities.Substance{Code: "S2", Denomination: "IBUPROFÈNE", MedicamentsCount: 1}, substances[1])
}

func TestBuildGeneriqueIndex(t *testing.T) {
	specialites := []entities.Specialite{
		{Cis: "61155773", Denomination: "CLAMOXYL 125 mg/5 ml", FormePharma: "poudre"},
		{Cis: "60000001", Denomination: "AMOXICILLINE BIOGARAN", FormePharma: "poudre"},
	}
	byCIS := map[string]int{"61155773": 0, "60000001": 1}
	rows := []entities.Generique{
		{IDGroupe: "145", LibelleGroupe: "AMOXICILLINE 125 mg - CLAMOXYL", Cis: "61155773", TypeGenerique: "0", NumeroOrdre: "1"},
		{IDGroupe: "145", LibelleGroupe: "AMOXICILLINE 125 mg - CLAMOXYL", Cis: "60000001", TypeGenerique: "1", NumeroOrdre: "2"},
		{IDGroupe: "145", LibelleGroupe: "AMOXICILLINE 125 mg - CLAMOXYL", Cis: "69999999", TypeGenerique: "1", NumeroOrdre: "3"},
	}

	gi := BuildGeneriqueIndex(rows, byCIS, specialites)

	group, ok := gi.ByCIS("60000001")
	require.True(t, ok)
	assert.Equal(t, "145", group.IDGroupe)
	require.Len(t, group.Items, 2)
	assert.Equal(t, "Princeps", group.Items[0].Type)
	assert.Equal(t, "AMOXICILLINE BIOGARAN", group.Items[1].Denomination)
	assert.Equal(t, []string{"69999999"}, gi.Orphans)

	_, ok = gi.ByCIS("69999999")
	assert.False(t, ok, "orphan members are not resolvable")

	_, ok = gi.ByID("999")
	assert.False(t, ok)
}

func TestParseAll_PartialData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "CIS_bdpm.txt",
		"60234100\tDOLIPRANE 1000 mg, comprimé\tcomprimé\torale\tAutorisation active\tProcédure nationale\tCommercialisée\t01/01/2000\t\t\t OPELLA HEALTHCARE\tNon\n")
	writeFile(t, dir, "CIS_COMPO_bdpm.txt",
		"60234100\tcomprimé\t02202\tPARACÉTAMOL\t1000 mg\tun comprimé\tSA\t1\n")

	ds, err := NewMedicamentsParser(dir).ParseAll(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Specialites, 1)
	assert.Equal(t, "OPELLA HEALTHCARE", ds.Specialites[0].Titulaire)
	assert.Len(t, ds.Substances, 1)
	assert.Empty(t, ds.Presentations)
	assert.True(t, ds.Stats[TablePresentations].Missing)
	assert.False(t, ds.Empty())
}

func TestParseAll_NoFiles(t *testing.T) {
	ds, err := NewMedicamentsParser(t.TempDir()).ParseAll(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Empty())
}

func TestSourceFor(t *testing.T) {
	src, ok := SourceFor(TableInfos)
	require.True(t, ok)
	assert.True(t, src.RootPath)

	_, ok = SourceFor(TableSubstances)
	assert.False(t, ok, "derived tables have no source file")
	assert.Len(t, Tables(), len(Sources)+1)
}
