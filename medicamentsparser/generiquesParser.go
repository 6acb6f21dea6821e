package medicamentsparser

import (
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
)

// GeneriqueIndex resolves generic groups by group id and by member CIS.
type GeneriqueIndex struct {
	Groups []entities.GeneriqueGroup
	byID   map[string]int
	byCIS  map[string]int
	// Orphans lists member CIS that have no specialite, in file order.
	Orphans []string
}

// ByID returns the group with the given id_groupe.
func (gi *GeneriqueIndex) ByID(id string) (*entities.GeneriqueGroup, bool) {
	idx, ok := gi.byID[id]
	if !ok {
		return nil, false
	}
	return &gi.Groups[idx], true
}

// ByCIS returns the first group, in file order, that lists cis as a member.
func (gi *GeneriqueIndex) ByCIS(cis string) (*entities.GeneriqueGroup, bool) {
	idx, ok := gi.byCIS[cis]
	if !ok {
		return nil, false
	}
	return &gi.Groups[idx], true
}

// BuildGeneriqueIndex groups membership rows by id_groupe. A membership only
// counts when its CIS exists in specialites; the others are reported as orphans.
func BuildGeneriqueIndex(rows []entities.Generique, specialites map[string]int, all []entities.Specialite) *GeneriqueIndex {
	gi := &GeneriqueIndex{
		Groups:  make([]entities.GeneriqueGroup, 0),
		byID:    make(map[string]int),
		byCIS:   make(map[string]int),
		Orphans: make([]string, 0),
	}

	for i := range rows {
		row := &rows[i]
		if row.IDGroupe == "" {
			continue
		}

		idx, ok := gi.byID[row.IDGroupe]
		if !ok {
			idx = len(gi.Groups)
			gi.byID[row.IDGroupe] = idx
			gi.Groups = append(gi.Groups, entities.GeneriqueGroup{
				IDGroupe:      row.IDGroupe,
				LibelleGroupe: row.LibelleGroupe,
				Items:         make([]entities.GeneriqueMember, 0, 4),
			})
		}

		specIdx, ok := specialites[row.Cis]
		if !ok {
			gi.Orphans = append(gi.Orphans, row.Cis)
			continue
		}
		spec := &all[specIdx]

		gi.Groups[idx].Items = append(gi.Groups[idx].Items, entities.GeneriqueMember{
			Cis:           row.Cis,
			Denomination:  spec.Denomination,
			FormePharma:   spec.FormePharma,
			TypeGenerique: row.TypeGenerique,
			Type:          entities.GeneriqueTypeLabel(row.TypeGenerique),
			NumeroOrdre:   row.NumeroOrdre,
		})
		if _, seen := gi.byCIS[row.Cis]; !seen {
			gi.byCIS[row.Cis] = idx
		}
	}
	return gi
}
