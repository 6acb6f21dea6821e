package snapshot

import (
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/giygas/bdpm-api/search"
)

// Indexed fields and weights per table. The primary field drives tiering.

var specialiteOptions = search.Options[entities.Specialite]{
	Fields: []search.Field[entities.Specialite]{
		{Name: "denomination", Weight: 3, Value: func(r *entities.Specialite) string { return r.Denomination }},
		{Name: "cis", Weight: 2, Value: func(r *entities.Specialite) string { return r.Cis }},
		{Name: "forme_pharma", Weight: 1, Value: func(r *entities.Specialite) string { return r.FormePharma }},
		{Name: "titulaire", Weight: 1, Value: func(r *entities.Specialite) string { return r.Titulaire }},
	},
	Primary: func(r *entities.Specialite) string { return r.Denomination },
}

var presentationOptions = search.Options[entities.Presentation]{
	Fields: []search.Field[entities.Presentation]{
		{Name: "libelle", Weight: 2, Value: func(r *entities.Presentation) string { return r.Libelle }},
		{Name: "cip7", Weight: 2, Value: func(r *entities.Presentation) string { return r.Cip7 }},
		{Name: "cip13", Weight: 2, Value: func(r *entities.Presentation) string { return r.Cip13 }},
		{Name: "cis", Weight: 1, Value: func(r *entities.Presentation) string { return r.Cis }},
	},
	Primary: func(r *entities.Presentation) string { return r.Libelle },
}

var compositionOptions = search.Options[entities.Composition]{
	Fields: []search.Field[entities.Composition]{
		{Name: "denomination_substance", Weight: 2, Value: func(r *entities.Composition) string { return r.DenominationSubstance }},
		{Name: "dosage", Weight: 1, Value: func(r *entities.Composition) string { return r.Dosage }},
		{Name: "code_substance", Weight: 1, Value: func(r *entities.Composition) string { return r.CodeSubstance }},
		{Name: "cis", Weight: 1, Value: func(r *entities.Composition) string { return r.Cis }},
	},
	Primary: func(r *entities.Composition) string { return r.DenominationSubstance },
}

var avisSMROptions = search.Options[entities.AvisSMR]{
	Fields: []search.Field[entities.AvisSMR]{
		{Name: "valeur_smr", Weight: 2, Value: func(r *entities.AvisSMR) string { return r.ValeurSMR }},
		{Name: "libelle_smr", Weight: 1, Value: func(r *entities.AvisSMR) string { return r.LibelleSMR }},
		{Name: "cis", Weight: 1, Value: func(r *entities.AvisSMR) string { return r.Cis }},
	},
	Primary: func(r *entities.AvisSMR) string { return r.ValeurSMR },
}

var avisASMROptions = search.Options[entities.AvisASMR]{
	Fields: []search.Field[entities.AvisASMR]{
		{Name: "valeur_asmr", Weight: 2, Value: func(r *entities.AvisASMR) string { return r.ValeurASMR }},
		{Name: "libelle_asmr", Weight: 1, Value: func(r *entities.AvisASMR) string { return r.LibelleASMR }},
		{Name: "cis", Weight: 1, Value: func(r *entities.AvisASMR) string { return r.Cis }},
	},
	Primary: func(r *entities.AvisASMR) string { return r.ValeurASMR },
}

var generiqueOptions = search.Options[entities.Generique]{
	Fields: []search.Field[entities.Generique]{
		{Name: "libelle_groupe", Weight: 2, Value: func(r *entities.Generique) string { return r.LibelleGroupe }},
		{Name: "id_groupe", Weight: 1, Value: func(r *entities.Generique) string { return r.IDGroupe }},
		{Name: "cis", Weight: 1, Value: func(r *entities.Generique) string { return r.Cis }},
	},
	Primary: func(r *entities.Generique) string { return r.LibelleGroupe },
}

var conditionOptions = search.Options[entities.Condition]{
	Fields: []search.Field[entities.Condition]{
		{Name: "condition", Weight: 2, Value: func(r *entities.Condition) string { return r.Condition }},
		{Name: "cis", Weight: 1, Value: func(r *entities.Condition) string { return r.Cis }},
	},
	Primary: func(r *entities.Condition) string { return r.Condition },
}

var disponibiliteOptions = search.Options[entities.Disponibilite]{
	Fields: []search.Field[entities.Disponibilite]{
		{Name: "libelle_statut", Weight: 2, Value: func(r *entities.Disponibilite) string { return r.LibelleStatut }},
		{Name: "cip13", Weight: 1, Value: func(r *entities.Disponibilite) string { return r.Cip13 }},
		{Name: "cis", Weight: 1, Value: func(r *entities.Disponibilite) string { return r.Cis }},
	},
	Primary: func(r *entities.Disponibilite) string { return r.LibelleStatut },
}

var mitmOptions = search.Options[entities.MITM]{
	Fields: []search.Field[entities.MITM]{
		{Name: "denomination", Weight: 2, Value: func(r *entities.MITM) string { return r.Denomination }},
		{Name: "code_atc", Weight: 2, Value: func(r *entities.MITM) string { return r.CodeATC }},
		{Name: "cis", Weight: 1, Value: func(r *entities.MITM) string { return r.Cis }},
	},
	Primary: func(r *entities.MITM) string { return r.Denomination },
}

var infoOptions = search.Options[entities.InfoImportante]{
	Fields: []search.Field[entities.InfoImportante]{
		{Name: "texte_affichage", Weight: 1, Value: func(r *entities.InfoImportante) string { return r.TexteAffichage }},
		{Name: "cis", Weight: 1, Value: func(r *entities.InfoImportante) string { return r.Cis }},
	},
	Primary: func(r *entities.InfoImportante) string { return r.TexteAffichage },
}

var substanceOptions = search.Options[entities.Substance]{
	Fields: []search.Field[entities.Substance]{
		{Name: "denomination", Weight: 2, Value: func(r *entities.Substance) string { return r.Denomination }},
		{Name: "code", Weight: 1, Value: func(r *entities.Substance) string { return r.Code }},
	},
	Primary: func(r *entities.Substance) string { return r.Denomination },
}
