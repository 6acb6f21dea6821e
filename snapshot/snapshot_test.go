package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixtureFiles = map[string]string{
	"CIS_bdpm.txt": "" +
		"60234100\tDOLIPRANE 1000 mg, comprimé\tcomprimé\torale\tAutorisation active\tProcédure nationale\tCommercialisée\t01/01/2000\t\t\tOPELLA HEALTHCARE\tNon\n" +
		"61155773\tCLAMOXYL 125 mg/5 ml, poudre\tpoudre\torale\tAutorisation active\tProcédure nationale\tCommercialisée\t01/01/1990\t\t\tGLAXOSMITHKLINE\tNon\n" +
		"60000001\tAMOXICILLINE BIOGARAN 125 mg/5 ml\tpoudre\torale\tAutorisation active\tProcédure nationale\tCommercialisée\t01/01/2005\t\t\tBIOGARAN\tNon\n",
	"CIS_CIP_bdpm.txt": "" +
		"60234100\t3400930000001\tplaquette de 8 comprimés\tPrésentation active\tDéclaration de commercialisation\t01/01/2000\t3400930000001\toui\t65%\t1,16\t2,18\t1,02\t\n" +
		"61155773\t3000002\tflacon de 60 ml\tPrésentation active\tDéclaration de commercialisation\t01/01/1990\t3400930000002\toui\t65%\t2,00\t3,00\t1,02\t\n",
	"CIS_COMPO_bdpm.txt": "" +
		"60234100\tcomprimé\t02202\tPARACÉTAMOL\t1000 mg\tun comprimé\tSA\t1\n" +
		"61155773\tpoudre\t00123\tAMOXICILLINE\t125 mg\t5 ml\tSA\t1\n" +
		"60000001\tpoudre\t00123\tAMOXICILLINE TRIHYDRATÉE\t125 mg\t5 ml\tSA\t1\n",
	"CIS_HAS_SMR_bdpm.txt":  "61155773\tCT-1\tInscription\t20200101\tImportant\tLe service médical rendu est important\n",
	"CIS_HAS_ASMR_bdpm.txt": "61155773\tCT-1\tInscription\t20200101\tV\tAbsence d'amélioration\n",
	"CIS_GENER_bdpm.txt": "" +
		"145\tAMOXICILLINE 125 mg - CLAMOXYL\t61155773\t0\t1\n" +
		"145\tAMOXICILLINE 125 mg - CLAMOXYL\t60000001\t1\t2\n" +
		"145\tAMOXICILLINE 125 mg - CLAMOXYL\t69999999\t1\t3\n",
	"CIS_CPD_bdpm.txt":      "61155773\tliste I\n",
	"CIS_CIP_Dispo_Spec.txt": "61155773\t3400930000002\t2\tTension d'approvisionnement\t01/02/2026\t01/03/2026\t\thttps://ansm.example/1\n",
	"CIS_MITM.txt":           "61155773\tJ01CA04\tCLAMOXYL 125 mg/5 ml\thttps://base.example/fi\n",
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func buildFixture(t *testing.T) *Snapshot {
	t.Helper()
	s, err := NewBuilder(writeFixture(t, fixtureFiles)).Build(context.Background())
	require.NoError(t, err)
	return s
}

func TestBuild_LoadsEveryTable(t *testing.T) {
	s := buildFixture(t)

	counts := s.Counts()
	assert.Equal(t, 3, counts["specialites"])
	assert.Equal(t, 2, counts["presentations"])
	assert.Equal(t, 3, counts["compositions"])
	assert.Equal(t, 3, counts["generiques"])
	assert.Equal(t, 0, counts["infos"], "missing file yields an empty table")
	assert.Equal(t, 2, counts["substances"])
	assert.Len(t, counts, 11)

	assert.True(t, s.Stats["infos"].Missing)
	assert.False(t, s.LastUpdated.IsZero())
	assert.NotZero(t, s.Fingerprint)
	assert.Regexp(t, `^"[0-9a-f]{16}"$`, s.ETag())
}

func TestBuild_NoDataFails(t *testing.T) {
	_, err := NewBuilder(t.TempDir()).Build(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(writeFixture(t, fixtureFiles)).Build(ctx)
	assert.Error(t, err)
}

func TestBuild_FingerprintFollowsContent(t *testing.T) {
	a := buildFixture(t)
	b := buildFixture(t)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	changed := make(map[string]string, len(fixtureFiles))
	for k, v := range fixtureFiles {
		changed[k] = v
	}
	changed["CIS_CPD_bdpm.txt"] = "61155773\tliste II\n"
	c, err := NewBuilder(writeFixture(t, changed)).Build(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestTableAndSearch(t *testing.T) {
	s := buildFixture(t)

	_, err := s.Table("nope")
	assert.True(t, errors.Is(err, ErrUnknownTable))

	res, err := s.Search("specialites", "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Len())

	res, err = s.Search("specialites", "amoxicilline")
	require.NoError(t, err)
	rows := res.Page(0, 10).([]entities.Specialite)
	require.Len(t, rows, 1)
	assert.Equal(t, "60000001", rows[0].Cis)

	res, err = s.Search("compositions", "amoxicilline")
	require.NoError(t, err)
	comps := res.Page(0, 10).([]entities.Composition)
	require.Len(t, comps, 2)
	assert.Equal(t, "AMOXICILLINE", comps[0].DenominationSubstance, "exact primary match ranks first")

	res, err = s.Search("presentations", "3400930000002")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
}

func TestExpandSpecialite(t *testing.T) {
	s := buildFixture(t)

	detail, ok := s.ExpandSpecialite("61155773")
	require.True(t, ok)
	assert.Equal(t, "GLAXOSMITHKLINE", detail.Titulaire)
	assert.Len(t, detail.Presentations, 1)
	assert.Len(t, detail.Compositions, 1)
	assert.Len(t, detail.AvisSMR, 1)
	assert.Len(t, detail.AvisASMR, 1)
	assert.Len(t, detail.Conditions, 1)
	assert.Len(t, detail.Disponibilites, 1)
	assert.Len(t, detail.MITM, 1)
	assert.Empty(t, detail.Infos)
	assert.NotNil(t, detail.Infos)

	require.NotNil(t, detail.Generique)
	assert.Equal(t, "145", detail.Generique.IDGroupe)
	members := make([]string, 0, len(detail.Generique.Items))
	for _, m := range detail.Generique.Items {
		members = append(members, m.Cis)
	}
	assert.Contains(t, members, "61155773")
	assert.Equal(t, []string{"61155773", "60000001"}, members, "orphan members are excluded")
	assert.Equal(t, "AMOXICILLINE BIOGARAN 125 mg/5 ml", detail.Generique.Items[1].Denomination)
}

func TestExpandSpecialite_NoGroupIsNotAnError(t *testing.T) {
	s := buildFixture(t)

	detail, ok := s.ExpandSpecialite("60234100")
	require.True(t, ok)
	assert.Nil(t, detail.Generique)
	assert.Empty(t, detail.AvisSMR)
}

func TestExpandSpecialite_Unknown(t *testing.T) {
	s := buildFixture(t)
	_, ok := s.ExpandSpecialite("00000000")
	assert.False(t, ok)
}

func TestPresentationByCIP(t *testing.T) {
	s := buildFixture(t)

	p, ok := s.PresentationByCIP("3000002")
	require.True(t, ok)
	assert.Equal(t, "61155773", p.Cis)

	p, ok = s.PresentationByCIP("3400930000002")
	require.True(t, ok)
	assert.Equal(t, "flacon de 60 ml", p.Libelle)

	_, ok = s.PresentationByCIP("")
	assert.False(t, ok)
}

func TestGeneriqueGroupAndOrphans(t *testing.T) {
	s := buildFixture(t)

	g, ok := s.GeneriqueGroup("145")
	require.True(t, ok)
	assert.Len(t, g.Items, 2)
	assert.Equal(t, []string{"69999999"}, s.Orphans())

	_, ok = s.GeneriqueGroup("146")
	assert.False(t, ok)
}

func TestGlobalSearch(t *testing.T) {
	s := buildFixture(t)

	hits := s.GlobalSearch("clamoxyl")
	require.NotEmpty(t, hits)
	assert.Equal(t, "specialite", hits[0].Type)

	hits = s.GlobalSearch("amoxicilline")
	types := make([]string, len(hits))
	for i, h := range hits {
		types[i] = h.Type
	}
	assert.Equal(t, []string{"specialite", "composition", "composition"}, types)
}

func TestDuplicateCIS(t *testing.T) {
	files := map[string]string{
		"CIS_bdpm.txt": "1\tFIRST\n1\tSECOND\n2\tOTHER\n",
	}
	s, err := NewBuilder(writeFixture(t, files)).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, s.DuplicateCIS)
	spec, ok := s.SpecialiteByCIS("1")
	require.True(t, ok)
	assert.Equal(t, "FIRST", spec.Denomination)
}
