// Package entities holds one row type per BDPM table. Every identifier is kept
// as the string found in the source file so leading zeros survive.
package entities

// Specialite is one marketed drug product (CIS_bdpm.txt).
type Specialite struct {
	Cis                   string `json:"cis"`
	Denomination          string `json:"denomination"`
	FormePharma           string `json:"forme_pharma"`
	VoiesAdmin            string `json:"voies_admin"`
	StatutAMM             string `json:"statut_amm"`
	TypeAMM               string `json:"type_amm"`
	Commercialisation     string `json:"commercialisation"`
	DateAMM               string `json:"date_amm"`
	StatutBDM             string `json:"statut_bdm"`
	NumAutorisationEuro   string `json:"num_autorisation_euro"`
	Titulaire             string `json:"titulaire"`
	SurveillanceRenforcee string `json:"surveillance_renforcee"`
}
