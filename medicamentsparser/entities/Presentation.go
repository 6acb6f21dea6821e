package entities

// Presentation is a packaged form of a specialite (CIS_CIP_bdpm.txt).
type Presentation struct {
	Cis                   string `json:"cis"`
	Cip7                  string `json:"cip7"`
	Libelle               string `json:"libelle"`
	StatutAdmin           string `json:"statut_admin"`
	EtatCommercialisation string `json:"etat_commercialisation"`
	DateDeclaration       string `json:"date_declaration"`
	Cip13                 string `json:"cip13"`
	AgrementCollectivite  string `json:"agrement_collectivite"`
	TauxRemboursement     string `json:"taux_remboursement"`
	PrixMedicament        string `json:"prix_medicament"`
	PrixPublic            string `json:"prix_public"`
	Honoraires            string `json:"honoraires"`
	Indications           string `json:"indications"`
}
