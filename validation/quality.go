package validation

import (
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/snapshot"
)

// sampleSize caps the identifier lists kept in a report.
const sampleSize = 10

// QualityReport summarizes the inconsistencies found in one snapshot. None of
// them prevents publication.
type QualityReport struct {
	DuplicateCIS []string `json:"duplicate_cis"`

	OrphanGeneriques     int      `json:"orphan_generiques"`
	OrphanGeneriquesList []string `json:"orphan_generiques_list"`

	WithoutPresentations     int      `json:"specialites_without_presentations"`
	WithoutPresentationsList []string `json:"specialites_without_presentations_list"`

	WithoutCompositions     int      `json:"specialites_without_compositions"`
	WithoutCompositionsList []string `json:"specialites_without_compositions_list"`

	RecoveredRows map[string]int `json:"recovered_rows"`
	MissingFiles  []string       `json:"missing_files"`
}

// ReportDataQuality inspects a snapshot.
func ReportDataQuality(s *snapshot.Snapshot) *QualityReport {
	report := &QualityReport{
		DuplicateCIS:             append([]string{}, s.DuplicateCIS...),
		OrphanGeneriquesList:     []string{},
		WithoutPresentationsList: []string{},
		WithoutCompositionsList:  []string{},
		RecoveredRows:            make(map[string]int),
		MissingFiles:             []string{},
	}

	orphans := s.Orphans()
	report.OrphanGeneriques = len(orphans)
	report.OrphanGeneriquesList = append(report.OrphanGeneriquesList, orphans[:min(len(orphans), sampleSize)]...)

	for _, spec := range s.Specialites.Rows() {
		if !s.HasPresentations(spec.Cis) {
			report.WithoutPresentations++
			if len(report.WithoutPresentationsList) < sampleSize {
				report.WithoutPresentationsList = append(report.WithoutPresentationsList, spec.Cis)
			}
		}
		if !s.HasCompositions(spec.Cis) {
			report.WithoutCompositions++
			if len(report.WithoutCompositionsList) < sampleSize {
				report.WithoutCompositionsList = append(report.WithoutCompositionsList, spec.Cis)
			}
		}
	}

	for _, src := range medicamentsparser.Sources {
		st := s.Stats[src.Table]
		if st.Recovered > 0 {
			report.RecoveredRows[string(src.Table)] = st.Recovered
		}
		if st.Missing {
			report.MissingFiles = append(report.MissingFiles, src.File)
		}
	}
	return report
}

// Log writes the non-empty findings as warnings.
func (r *QualityReport) Log() {
	if len(r.DuplicateCIS) > 0 {
		logging.Warn("Duplicate CIS detected", "total", len(r.DuplicateCIS), "cis_list", r.DuplicateCIS)
	}
	if r.OrphanGeneriques > 0 {
		logging.Warn("Generic group members without specialite",
			"count", r.OrphanGeneriques, "cis_sample", r.OrphanGeneriquesList)
	}
	if r.WithoutPresentations > 0 {
		logging.Warn("Specialites without presentations",
			"count", r.WithoutPresentations, "cis_sample", r.WithoutPresentationsList)
	}
	if r.WithoutCompositions > 0 {
		logging.Warn("Specialites without compositions",
			"count", r.WithoutCompositions, "cis_sample", r.WithoutCompositionsList)
	}
	for table, n := range r.RecoveredRows {
		logging.Warn("Malformed rows recovered", "table", table, "count", n)
	}
	if len(r.MissingFiles) > 0 {
		logging.Warn("Source files missing, tables left empty", "files", r.MissingFiles)
	}
}
