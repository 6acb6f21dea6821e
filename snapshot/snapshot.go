// Package snapshot holds one complete, immutable, internally consistent BDPM
// dataset: every table, its search index, and the hash indexes used for
// cross-table enrichment. A snapshot is never mutated after Build returns.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/giygas/bdpm-api/search"
)

var (
	// ErrNoData is returned when not a single source table produced a row.
	ErrNoData = errors.New("no source data available")
	// ErrUnknownTable is returned for table names outside the source registry.
	ErrUnknownTable = errors.New("unknown table")
)

// Snapshot is safe for concurrent use by any number of readers.
type Snapshot struct {
	Specialites    *search.Index[entities.Specialite]
	Presentations  *search.Index[entities.Presentation]
	Compositions   *search.Index[entities.Composition]
	AvisSMR        *search.Index[entities.AvisSMR]
	AvisASMR       *search.Index[entities.AvisASMR]
	Generiques     *search.Index[entities.Generique]
	Conditions     *search.Index[entities.Condition]
	Disponibilites *search.Index[entities.Disponibilite]
	MITM           *search.Index[entities.MITM]
	Infos          *search.Index[entities.InfoImportante]
	Substances     *search.Index[entities.Substance]

	tables map[medicamentsparser.Table]search.Table

	specialiteByCIS    map[string]int
	presentationsByCIS map[string][]int
	compositionsByCIS  map[string][]int
	smrByCIS           map[string][]int
	asmrByCIS          map[string][]int
	conditionsByCIS    map[string][]int
	dispoByCIS         map[string][]int
	mitmByCIS          map[string][]int
	infosByCIS         map[string][]int
	presentationByCIP  map[string]int
	generiques         *medicamentsparser.GeneriqueIndex

	// DuplicateCIS lists specialite identifiers seen more than once. The first
	// row wins for lookups.
	DuplicateCIS []string

	Stats       map[medicamentsparser.Table]medicamentsparser.FileStats
	LastUpdated time.Time
	BuiltAt     time.Time
	Fingerprint uint64
}

// Table returns the query surface of a table by name.
func (s *Snapshot) Table(name string) (search.Table, error) {
	t, ok := s.tables[medicamentsparser.Table(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Search ranks the rows of one table against query. A blank query returns the
// whole table in source order.
func (s *Snapshot) Search(name, query string) (search.Results, error) {
	t, err := s.Table(name)
	if err != nil {
		return nil, err
	}
	return t.Query(query), nil
}

// Counts returns the number of rows of every table.
func (s *Snapshot) Counts() map[string]int {
	counts := make(map[string]int, len(s.tables))
	for name, t := range s.tables {
		counts[string(name)] = t.Len()
	}
	return counts
}

// ETag is the quoted HTTP entity tag derived from the source fingerprint.
func (s *Snapshot) ETag() string {
	return fmt.Sprintf(`"%016x"`, s.Fingerprint)
}

// Orphans lists generic group member CIS that have no specialite.
func (s *Snapshot) Orphans() []string {
	return s.generiques.Orphans
}

// SpecialiteByCIS returns the specialite with the given identifier.
func (s *Snapshot) SpecialiteByCIS(cis string) (*entities.Specialite, bool) {
	idx, ok := s.specialiteByCIS[cis]
	if !ok {
		return nil, false
	}
	return &s.Specialites.Rows()[idx], true
}

// HasPresentations reports whether any presentation references cis.
func (s *Snapshot) HasPresentations(cis string) bool {
	return len(s.presentationsByCIS[cis]) > 0
}

// HasCompositions reports whether any composition references cis.
func (s *Snapshot) HasCompositions(cis string) bool {
	return len(s.compositionsByCIS[cis]) > 0
}
