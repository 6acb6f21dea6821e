package medicamentsparser

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"golang.org/x/sync/errgroup"
)

// Dataset holds every table exactly in source row order, plus the derived
// substances.
type Dataset struct {
	Specialites    []entities.Specialite
	Presentations  []entities.Presentation
	Compositions   []entities.Composition
	AvisSMR        []entities.AvisSMR
	AvisASMR       []entities.AvisASMR
	Generiques     []entities.Generique
	Conditions     []entities.Condition
	Disponibilites []entities.Disponibilite
	MITM           []entities.MITM
	Infos          []entities.InfoImportante
	Substances     []entities.Substance

	Stats map[Table]FileStats
}

// Empty reports whether no source table produced a single row.
func (d *Dataset) Empty() bool {
	for _, s := range d.Stats {
		if s.Rows > 0 {
			return false
		}
	}
	return true
}

// ParseAll parses every source file concurrently. Missing or malformed files
// never fail the whole parse; only I/O errors other than absence do.
func (p *MedicamentsParser) ParseAll(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	ds := &Dataset{}
	stats := make([]FileStats, len(Sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range Sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, st, err := ParseFile(p.Path(src), src.Columns)
			if err != nil {
				// Unreadable is treated like missing: the table stays empty.
				logging.Error("Failed to parse source file", "file", src.File, "error", err)
				rows = [][]string{}
				st = FileStats{Missing: true}
			}
			stats[i] = st
			ds.assign(src.Table, rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parsing aborted: %w", err)
	}

	ds.Stats = make(map[Table]FileStats, len(Sources)+1)
	for i, src := range Sources {
		ds.Stats[src.Table] = stats[i]
	}

	ds.Substances = DeriveSubstances(ds.Compositions)
	ds.Stats[TableSubstances] = FileStats{Rows: len(ds.Substances)}

	logging.Info("Source files parsed",
		"duration", time.Since(start).String(),
		"specialites", len(ds.Specialites),
		"presentations", len(ds.Presentations),
		"compositions", len(ds.Compositions),
		"substances", len(ds.Substances))
	return ds, nil
}

// assign writes one table field. Each goroutine owns a distinct field.
func (d *Dataset) assign(t Table, rows [][]string) {
	switch t {
	case TableSpecialites:
		d.Specialites = mapRows(rows, specialiteFromRow)
	case TablePresentations:
		d.Presentations = mapRows(rows, presentationFromRow)
	case TableCompositions:
		d.Compositions = mapRows(rows, compositionFromRow)
	case TableAvisSMR:
		d.AvisSMR = mapRows(rows, avisSMRFromRow)
	case TableAvisASMR:
		d.AvisASMR = mapRows(rows, avisASMRFromRow)
	case TableGeneriques:
		d.Generiques = mapRows(rows, generiqueFromRow)
	case TableConditions:
		d.Conditions = mapRows(rows, conditionFromRow)
	case TableDisponibilites:
		d.Disponibilites = mapRows(rows, disponibiliteFromRow)
	case TableMITM:
		d.MITM = mapRows(rows, mitmFromRow)
	case TableInfos:
		d.Infos = mapRows(rows, infoFromRow)
	}
}
