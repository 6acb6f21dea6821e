package medicamentsparser

import "github.com/giygas/bdpm-api/medicamentsparser/entities"

// DeriveSubstances builds one substance per distinct code_substance, in order
// of first appearance. The denomination comes from the first occurrence and
// MedicamentsCount is the number of composition rows referencing the code.
func DeriveSubstances(compositions []entities.Composition) []entities.Substance {
	substances := make([]entities.Substance, 0)
	position := make(map[string]int)

	for i := range compositions {
		c := &compositions[i]
		if c.CodeSubstance == "" || c.DenominationSubstance == "" {
			continue
		}
		if idx, ok := position[c.CodeSubstance]; ok {
			substances[idx].MedicamentsCount++
			continue
		}
		position[c.CodeSubstance] = len(substances)
		substances = append(substances, entities.Substance{
			Code:             c.CodeSubstance,
			Denomination:     c.DenominationSubstance,
			MedicamentsCount: 1,
		})
	}
	return substances
}
