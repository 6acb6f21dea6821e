package entities

// MITM flags a "médicament d'intérêt thérapeutique majeur".
type MITM struct {
	Cis          string `json:"cis"`
	CodeATC      string `json:"code_atc"`
	Denomination string `json:"denomination"`
	LienFI       string `json:"lien_fi"`
}
