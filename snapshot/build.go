package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/giygas/bdpm-api/metrics"
	"github.com/giygas/bdpm-api/search"
	"golang.org/x/sync/errgroup"
)

// Builder parses the committed files of a data directory into snapshots.
type Builder struct {
	parser *medicamentsparser.MedicamentsParser
	now    func() time.Time
}

// NewBuilder creates a builder reading from dir.
func NewBuilder(dir string) *Builder {
	return &Builder{
		parser: medicamentsparser.NewMedicamentsParser(dir),
		now:    time.Now,
	}
}

// Build parses every committed file and indexes the result. It fails with
// ErrNoData when no table has a single row; partial data is not an error.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	start := b.now()

	ds, err := b.parser.ParseAll(ctx)
	if err != nil {
		metrics.SnapshotBuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if ds.Empty() {
		metrics.SnapshotBuildsTotal.WithLabelValues("empty").Inc()
		return nil, ErrNoData
	}

	s, err := FromDataset(ctx, ds)
	if err != nil {
		metrics.SnapshotBuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.BuiltAt = b.now()
	s.LastUpdated = b.lastUpdated(s.BuiltAt)

	elapsed := s.BuiltAt.Sub(start)
	metrics.SnapshotBuildsTotal.WithLabelValues("ok").Inc()
	metrics.SnapshotBuildDuration.Observe(elapsed.Seconds())
	logging.Info("Snapshot built",
		"duration", elapsed.String(),
		"fingerprint", fmt.Sprintf("%016x", s.Fingerprint),
		"specialites", s.Specialites.Len(),
		"generic_groups", len(s.generiques.Groups))
	return s, nil
}

// lastUpdated is the modification time of the specialites file, the
// reference table of the registry.
func (b *Builder) lastUpdated(fallback time.Time) time.Time {
	src, _ := medicamentsparser.SourceFor(medicamentsparser.TableSpecialites)
	info, err := os.Stat(b.parser.Path(src))
	if err != nil {
		return fallback
	}
	return info.ModTime()
}

// FromDataset indexes a parsed dataset. Tables are indexed concurrently; each
// goroutine owns one field of the snapshot under construction.
func FromDataset(ctx context.Context, ds *medicamentsparser.Dataset) (*Snapshot, error) {
	s := &Snapshot{Stats: ds.Stats}

	g, gctx := errgroup.WithContext(ctx)
	build := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	build(func() {
		s.Specialites = search.New(ds.Specialites, specialiteOptions)
		s.specialiteByCIS, s.DuplicateCIS = uniqueIndex(ds.Specialites, func(r *entities.Specialite) string { return r.Cis })
	})
	build(func() {
		s.Presentations = search.New(ds.Presentations, presentationOptions)
		s.presentationsByCIS = groupBy(ds.Presentations, func(r *entities.Presentation) string { return r.Cis })
		s.presentationByCIP = cipIndex(ds.Presentations)
	})
	build(func() {
		s.Compositions = search.New(ds.Compositions, compositionOptions)
		s.compositionsByCIS = groupBy(ds.Compositions, func(r *entities.Composition) string { return r.Cis })
	})
	build(func() {
		s.AvisSMR = search.New(ds.AvisSMR, avisSMROptions)
		s.smrByCIS = groupBy(ds.AvisSMR, func(r *entities.AvisSMR) string { return r.Cis })
	})
	build(func() {
		s.AvisASMR = search.New(ds.AvisASMR, avisASMROptions)
		s.asmrByCIS = groupBy(ds.AvisASMR, func(r *entities.AvisASMR) string { return r.Cis })
	})
	build(func() {
		s.Generiques = search.New(ds.Generiques, generiqueOptions)
	})
	build(func() {
		s.Conditions = search.New(ds.Conditions, conditionOptions)
		s.conditionsByCIS = groupBy(ds.Conditions, func(r *entities.Condition) string { return r.Cis })
	})
	build(func() {
		s.Disponibilites = search.New(ds.Disponibilites, disponibiliteOptions)
		s.dispoByCIS = groupBy(ds.Disponibilites, func(r *entities.Disponibilite) string { return r.Cis })
	})
	build(func() {
		s.MITM = search.New(ds.MITM, mitmOptions)
		s.mitmByCIS = groupBy(ds.MITM, func(r *entities.MITM) string { return r.Cis })
	})
	build(func() {
		s.Infos = search.New(ds.Infos, infoOptions)
		s.infosByCIS = groupBy(ds.Infos, func(r *entities.InfoImportante) string { return r.Cis })
	})
	build(func() {
		s.Substances = search.New(ds.Substances, substanceOptions)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot build aborted: %w", err)
	}

	// Group membership needs the specialite index, so it runs after the wait.
	s.generiques = medicamentsparser.BuildGeneriqueIndex(ds.Generiques, s.specialiteByCIS, ds.Specialites)

	s.tables = map[medicamentsparser.Table]search.Table{
		medicamentsparser.TableSpecialites:    s.Specialites,
		medicamentsparser.TablePresentations:  s.Presentations,
		medicamentsparser.TableCompositions:   s.Compositions,
		medicamentsparser.TableAvisSMR:        s.AvisSMR,
		medicamentsparser.TableAvisASMR:       s.AvisASMR,
		medicamentsparser.TableGeneriques:     s.Generiques,
		medicamentsparser.TableConditions:     s.Conditions,
		medicamentsparser.TableDisponibilites: s.Disponibilites,
		medicamentsparser.TableMITM:           s.MITM,
		medicamentsparser.TableInfos:          s.Infos,
		medicamentsparser.TableSubstances:     s.Substances,
	}
	s.Fingerprint = fingerprint(ds.Stats)
	return s, nil
}

// fingerprint folds the per-file digests, in registry order, into one value.
func fingerprint(stats map[medicamentsparser.Table]medicamentsparser.FileStats) uint64 {
	buf := make([]byte, 0, 8*len(medicamentsparser.Sources))
	for _, src := range medicamentsparser.Sources {
		buf = binary.LittleEndian.AppendUint64(buf, stats[src.Table].Digest)
	}
	return xxhash.Sum64(buf)
}

func groupBy[T any](rows []T, key func(*T) string) map[string][]int {
	out := make(map[string][]int)
	for i := range rows {
		k := key(&rows[i])
		out[k] = append(out[k], i)
	}
	return out
}

func uniqueIndex[T any](rows []T, key func(*T) string) (map[string]int, []string) {
	out := make(map[string]int, len(rows))
	var dups []string
	for i := range rows {
		k := key(&rows[i])
		if _, seen := out[k]; seen {
			dups = append(dups, k)
			continue
		}
		out[k] = i
	}
	return out, dups
}

func cipIndex(rows []entities.Presentation) map[string]int {
	out := make(map[string]int, 2*len(rows))
	for i := range rows {
		for _, code := range []string{rows[i].Cip7, rows[i].Cip13} {
			if code == "" {
				continue
			}
			if _, seen := out[code]; !seen {
				out[code] = i
			}
		}
	}
	return out
}
