package entities

// Generique is one membership row of CIS_GENER_bdpm.txt.
type Generique struct {
	IDGroupe      string `json:"id_groupe"`
	LibelleGroupe string `json:"libelle_groupe"`
	Cis           string `json:"cis"`
	TypeGenerique string `json:"type_generique"`
	NumeroOrdre   string `json:"numero_ordre"`
}

// GeneriqueGroup is the resolved descriptor of a generic group. Items only
// contains members whose CIS exists in the specialites table.
type GeneriqueGroup struct {
	IDGroupe      string            `json:"id_groupe"`
	LibelleGroupe string            `json:"libelle_groupe"`
	Items         []GeneriqueMember `json:"items"`
}

// GeneriqueMember carries enough of the specialite to render the group
// without a second lookup.
type GeneriqueMember struct {
	Cis           string `json:"cis"`
	Denomination  string `json:"denomination"`
	FormePharma   string `json:"forme_pharma"`
	TypeGenerique string `json:"type_generique"`
	Type          string `json:"type"`
	NumeroOrdre   string `json:"numero_ordre"`
}

// GeneriqueTypeLabel maps the numeric type_generique code to its label.
func GeneriqueTypeLabel(code string) string {
	switch code {
	case "0":
		return "Princeps"
	case "1":
		return "Générique"
	case "2":
		return "Génériques par complémentarité posologique"
	case "4":
		return "Générique substituable"
	}
	return ""
}
