package entities

type Composition struct {
	Cis                   string `json:"cis"`
	DesignationElement    string `json:"designation_element"`
	CodeSubstance         string `json:"code_substance"`
	DenominationSubstance string `json:"denomination_substance"`
	Dosage                string `json:"dosage"`
	ReferenceDosage       string `json:"reference_dosage"`
	NatureComposant       string `json:"nature_composant"`
	NumeroOrdre           string `json:"numero_ordre"`
}
