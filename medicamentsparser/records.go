package medicamentsparser

import "github.com/giygas/bdpm-api/medicamentsparser/entities"

// Row constructors. ParseFile guarantees len(r) == len(Source.Columns).

func specialiteFromRow(r []string) entities.Specialite {
	return entities.Specialite{
		Cis:                   r[0],
		Denomination:          r[1],
		FormePharma:           r[2],
		VoiesAdmin:            r[3],
		StatutAMM:             r[4],
		TypeAMM:               r[5],
		Commercialisation:     r[6],
		DateAMM:               r[7],
		StatutBDM:             r[8],
		NumAutorisationEuro:   r[9],
		Titulaire:             r[10],
		SurveillanceRenforcee: r[11],
	}
}

func presentationFromRow(r []string) entities.Presentation {
	return entities.Presentation{
		Cis:                   r[0],
		Cip7:                  r[1],
		Libelle:               r[2],
		StatutAdmin:           r[3],
		EtatCommercialisation: r[4],
		DateDeclaration:       r[5],
		Cip13:                 r[6],
		AgrementCollectivite:  r[7],
		TauxRemboursement:     r[8],
		PrixMedicament:        r[9],
		PrixPublic:            r[10],
		Honoraires:            r[11],
		Indications:           r[12],
	}
}

func compositionFromRow(r []string) entities.Composition {
	return entities.Composition{
		Cis:                   r[0],
		DesignationElement:    r[1],
		CodeSubstance:         r[2],
		DenominationSubstance: r[3],
		Dosage:                r[4],
		ReferenceDosage:       r[5],
		NatureComposant:       r[6],
		NumeroOrdre:           r[7],
	}
}

func avisSMRFromRow(r []string) entities.AvisSMR {
	return entities.AvisSMR{
		Cis:             r[0],
		HasDossier:      r[1],
		MotifEvaluation: r[2],
		DateAvis:        r[3],
		ValeurSMR:       r[4],
		LibelleSMR:      r[5],
	}
}

func avisASMRFromRow(r []string) entities.AvisASMR {
	return entities.AvisASMR{
		Cis:             r[0],
		HasDossier:      r[1],
		MotifEvaluation: r[2],
		DateAvis:        r[3],
		ValeurASMR:      r[4],
		LibelleASMR:     r[5],
	}
}

func generiqueFromRow(r []string) entities.Generique {
	return entities.Generique{
		IDGroupe:      r[0],
		LibelleGroupe: r[1],
		Cis:           r[2],
		TypeGenerique: r[3],
		NumeroOrdre:   r[4],
	}
}

func conditionFromRow(r []string) entities.Condition {
	return entities.Condition{Cis: r[0], Condition: r[1]}
}

func disponibiliteFromRow(r []string) entities.Disponibilite {
	return entities.Disponibilite{
		Cis:             r[0],
		Cip13:           r[1],
		CodeStatut:      r[2],
		LibelleStatut:   r[3],
		DateDebut:       r[4],
		DateMiseAJour:   r[5],
		DateRemiseDispo: r[6],
		LienANSM:        r[7],
	}
}

func mitmFromRow(r []string) entities.MITM {
	return entities.MITM{Cis: r[0], CodeATC: r[1], Denomination: r[2], LienFI: r[3]}
}

func infoFromRow(r []string) entities.InfoImportante {
	return entities.InfoImportante{Cis: r[0], DateDebut: r[1], DateFin: r[2], TexteAffichage: r[3]}
}

func mapRows[T any](rows [][]string, build func([]string) T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = build(r)
	}
	return out
}
