// Package medicamentsparser turns the committed BDPM tab-separated files into
// typed rows. Every source file has a fixed column layout declared here.
package medicamentsparser

// Table names a dataset table, as exposed to the HTTP layer.
type Table string

const (
	TableSpecialites    Table = "specialites"
	TablePresentations  Table = "presentations"
	TableCompositions   Table = "compositions"
	TableAvisSMR        Table = "avis_smr"
	TableAvisASMR       Table = "avis_asmr"
	TableGeneriques     Table = "generiques"
	TableConditions     Table = "conditions"
	TableDisponibilites Table = "disponibilites"
	TableMITM           Table = "mitm"
	TableInfos          Table = "infos"
	// TableSubstances is derived from compositions and has no source file.
	TableSubstances Table = "substances"
)

// Source describes one downloadable BDPM file and its column layout.
type Source struct {
	Table   Table
	File    string
	Columns []string
	// RootPath marks files served outside the /file/ download prefix.
	RootPath bool
}

// Sources lists every BDPM file, in load order.
var Sources = []Source{
	{
		Table: TableSpecialites,
		File:  "CIS_bdpm.txt",
		Columns: []string{"cis", "denomination", "forme_pharma", "voies_admin", "statut_amm", "type_amm",
			"commercialisation", "date_amm", "statut_bdm", "num_autorisation_euro", "titulaire", "surveillance_renforcee"},
	},
	{
		Table: TablePresentations,
		File:  "CIS_CIP_bdpm.txt",
		Columns: []string{"cis", "cip7", "libelle", "statut_admin", "etat_commercialisation", "date_declaration",
			"cip13", "agrement_collectivite", "taux_remboursement", "prix_medicament", "prix_public", "honoraires", "indications"},
	},
	{
		Table: TableCompositions,
		File:  "CIS_COMPO_bdpm.txt",
		Columns: []string{"cis", "designation_element", "code_substance", "denomination_substance", "dosage",
			"reference_dosage", "nature_composant", "numero_ordre"},
	},
	{
		Table:   TableAvisSMR,
		File:    "CIS_HAS_SMR_bdpm.txt",
		Columns: []string{"cis", "has_dossier", "motif_evaluation", "date_avis", "valeur_smr", "libelle_smr"},
	},
	{
		Table:   TableAvisASMR,
		File:    "CIS_HAS_ASMR_bdpm.txt",
		Columns: []string{"cis", "has_dossier", "motif_evaluation", "date_avis", "valeur_asmr", "libelle_asmr"},
	},
	{
		Table:   TableGeneriques,
		File:    "CIS_GENER_bdpm.txt",
		Columns: []string{"id_groupe", "libelle_groupe", "cis", "type_generique", "numero_ordre"},
	},
	{
		Table:   TableConditions,
		File:    "CIS_CPD_bdpm.txt",
		Columns: []string{"cis", "condition"},
	},
	{
		Table: TableDisponibilites,
		File:  "CIS_CIP_Dispo_Spec.txt",
		Columns: []string{"cis", "cip13", "code_statut", "libelle_statut", "date_debut", "date_mise_a_jour",
			"date_remise_dispo", "lien_ansm"},
	},
	{
		Table:   TableMITM,
		File:    "CIS_MITM.txt",
		Columns: []string{"cis", "code_atc", "denomination", "lien_fi"},
	},
	{
		Table:    TableInfos,
		File:     "CIS_InfoImportantes.txt",
		Columns:  []string{"cis", "date_debut", "date_fin", "texte_affichage"},
		RootPath: true,
	},
}

// SourceFor returns the source declaration of a table.
func SourceFor(t Table) (Source, bool) {
	for _, s := range Sources {
		if s.Table == t {
			return s, true
		}
	}
	return Source{}, false
}

// Tables returns every queryable table name, derived ones included.
func Tables() []Table {
	tables := make([]Table, 0, len(Sources)+1)
	for _, s := range Sources {
		tables = append(tables, s.Table)
	}
	return append(tables, TableSubstances)
}
