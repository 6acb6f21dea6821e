package entities

// AvisSMR is a HAS "service médical rendu" appraisal.
type AvisSMR struct {
	Cis             string `json:"cis"`
	HasDossier      string `json:"has_dossier"`
	MotifEvaluation string `json:"motif_evaluation"`
	DateAvis        string `json:"date_avis"`
	ValeurSMR       string `json:"valeur_smr"`
	LibelleSMR      string `json:"libelle_smr"`
}

// AvisASMR is a HAS appraisal of the improvement over existing treatments.
type AvisASMR struct {
	Cis             string `json:"cis"`
	HasDossier      string `json:"has_dossier"`
	MotifEvaluation string `json:"motif_evaluation"`
	DateAvis        string `json:"date_avis"`
	ValeurASMR      string `json:"valeur_asmr"`
	LibelleASMR     string `json:"libelle_asmr"`
}
