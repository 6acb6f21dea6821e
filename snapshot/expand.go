package snapshot

import (
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
)

// SpecialiteDetail is a specialite joined with every row keyed by its CIS.
type SpecialiteDetail struct {
	entities.Specialite
	Presentations  []entities.Presentation   `json:"presentations"`
	Compositions   []entities.Composition    `json:"compositions"`
	AvisSMR        []entities.AvisSMR        `json:"avis_smr"`
	AvisASMR       []entities.AvisASMR       `json:"avis_asmr"`
	Conditions     []entities.Condition      `json:"conditions"`
	Disponibilites []entities.Disponibilite  `json:"disponibilites"`
	MITM           []entities.MITM           `json:"mitm"`
	Infos          []entities.InfoImportante `json:"infos_importantes"`
	// Generique is nil when the specialite belongs to no generic group.
	Generique *entities.GeneriqueGroup `json:"generique"`
}

// ExpandSpecialite resolves cis across every table. The boolean is false only
// when cis is not a known specialite.
func (s *Snapshot) ExpandSpecialite(cis string) (*SpecialiteDetail, bool) {
	spec, ok := s.SpecialiteByCIS(cis)
	if !ok {
		return nil, false
	}

	detail := &SpecialiteDetail{
		Specialite:     *spec,
		Presentations:  pick(s.Presentations.Rows(), s.presentationsByCIS[cis]),
		Compositions:   pick(s.Compositions.Rows(), s.compositionsByCIS[cis]),
		AvisSMR:        pick(s.AvisSMR.Rows(), s.smrByCIS[cis]),
		AvisASMR:       pick(s.AvisASMR.Rows(), s.asmrByCIS[cis]),
		Conditions:     pick(s.Conditions.Rows(), s.conditionsByCIS[cis]),
		Disponibilites: pick(s.Disponibilites.Rows(), s.dispoByCIS[cis]),
		MITM:           pick(s.MITM.Rows(), s.mitmByCIS[cis]),
		Infos:          pick(s.Infos.Rows(), s.infosByCIS[cis]),
	}
	if group, ok := s.generiques.ByCIS(cis); ok {
		detail.Generique = group
	}
	return detail, true
}

// PresentationByCIP finds a presentation by its 7 or 13 digit CIP code.
func (s *Snapshot) PresentationByCIP(code string) (*entities.Presentation, bool) {
	idx, ok := s.presentationByCIP[code]
	if !ok {
		return nil, false
	}
	return &s.Presentations.Rows()[idx], true
}

// GeneriqueGroup returns the descriptor of a generic group.
func (s *Snapshot) GeneriqueGroup(id string) (*entities.GeneriqueGroup, bool) {
	return s.generiques.ByID(id)
}

// GlobalHit is one row of a cross-table search, tagged with its origin.
type GlobalHit struct {
	Type string `json:"type"`
	Item any    `json:"item"`
}

// GlobalSearch searches specialites, presentations and compositions and
// concatenates the ranked results in that order.
func (s *Snapshot) GlobalSearch(query string) []GlobalHit {
	specs := s.Specialites.Search(query)
	pres := s.Presentations.Search(query)
	comps := s.Compositions.Search(query)

	hits := make([]GlobalHit, 0, len(specs)+len(pres)+len(comps))
	for _, r := range specs {
		hits = append(hits, GlobalHit{Type: "specialite", Item: r})
	}
	for _, r := range pres {
		hits = append(hits, GlobalHit{Type: "presentation", Item: r})
	}
	for _, r := range comps {
		hits = append(hits, GlobalHit{Type: "composition", Item: r})
	}
	return hits
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
