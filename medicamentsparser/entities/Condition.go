package entities

// Condition is a prescription or delivery restriction (CIS_CPD_bdpm.txt).
type Condition struct {
	Cis       string `json:"cis"`
	Condition string `json:"condition"`
}
