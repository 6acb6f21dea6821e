package entities

type InfoImportante struct {
	Cis            string `json:"cis"`
	DateDebut      string `json:"date_debut"`
	DateFin        string `json:"date_fin"`
	TexteAffichage string `json:"texte_affichage"`
}
