package entities

// Disponibilite tracks a shortage or supply tension for one presentation.
type Disponibilite struct {
	Cis             string `json:"cis"`
	Cip13           string `json:"cip13"`
	CodeStatut      string `json:"code_statut"`
	LibelleStatut   string `json:"libelle_statut"`
	DateDebut       string `json:"date_debut"`
	DateMiseAJour   string `json:"date_mise_a_jour"`
	DateRemiseDispo string `json:"date_remise_dispo"`
	LienANSM        string `json:"lien_ansm"`
}
