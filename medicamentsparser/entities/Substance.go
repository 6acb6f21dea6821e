package entities

// Substance is derived from the compositions: one per distinct code_substance.
type Substance struct {
	Code             string `json:"code"`
	Denomination     string `json:"denomination"`
	MedicamentsCount int    `json:"medicaments_count"`
}
