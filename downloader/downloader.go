// Package downloader keeps the committed BDPM source files up to date: it
// skips files checked recently, fetches the others to a scratch file, compares
// content hashes, converts changed files to UTF-8 and atomically replaces the
// committed copy.
package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/metrics"
	"github.com/panjf2000/ants/v2"
)

// Compile-time check to ensure Downloader implements interfaces.Downloader
var _ interfaces.Downloader = (*Downloader)(nil)

const scratchDir = ".scratch"

// Options configures a Downloader.
type Options struct {
	Dir     string
	BaseURL string
	// Window is the freshness window: files checked more recently are skipped.
	Window  time.Duration
	Workers int
	Sources []medicamentsparser.Source
}

// Downloader syncs the committed files of one data directory.
type Downloader struct {
	opts       Options
	fetcher    Fetcher
	normalizer *Normalizer
	manifest   *Manifest
	now        func() time.Time
}

// New prepares the data directory and loads its manifest.
func New(opts Options, fetcher Fetcher) (*Downloader, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Sources == nil {
		opts.Sources = medicamentsparser.Sources
	}
	if err := os.MkdirAll(filepath.Join(opts.Dir, scratchDir), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Downloader{
		opts:       opts,
		fetcher:    fetcher,
		normalizer: NewNormalizer(),
		manifest:   LoadManifest(opts.Dir),
		now:        time.Now,
	}, nil
}

// Manifest exposes the bookkeeping of the data directory.
func (d *Downloader) Manifest() *Manifest {
	return d.manifest
}

// URL returns the download location of a source file.
func (d *Downloader) URL(src medicamentsparser.Source) string {
	base := strings.TrimRight(d.opts.BaseURL, "/")
	if src.RootPath {
		return base + "/" + src.File
	}
	return base + "/file/" + src.File
}

// Sync processes every source file concurrently. Failures are isolated per
// file and reported; the returned error is reserved for a sync that could not
// run at all.
func (d *Downloader) Sync(ctx context.Context) (*interfaces.SyncReport, error) {
	report := &interfaces.SyncReport{
		StartedAt: d.now(),
		Files:     make([]interfaces.FileOutcome, len(d.opts.Sources)),
	}

	pool, err := ants.NewPool(d.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create download pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, src := range d.opts.Sources {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			report.Files[i] = d.syncFile(ctx, src)
		}
		if err := pool.Submit(task); err != nil {
			logging.Warn("Download pool rejected task, running inline", "file", src.File, "error", err)
			task()
		}
	}
	wg.Wait()

	report.FinishedAt = d.now()
	logging.Info("Source files sync completed",
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
		"updated", report.Count(interfaces.FileUpdated),
		"unchanged", report.Count(interfaces.FileUnchanged),
		"skipped", report.Count(interfaces.FileSkipped),
		"failed", report.Count(interfaces.FileFailed))
	return report, nil
}

func (d *Downloader) syncFile(ctx context.Context, src medicamentsparser.Source) (out interfaces.FileOutcome) {
	start := d.now()
	out.File = src.File
	defer func() {
		out.Duration = d.now().Sub(start)
		metrics.SourceFilesTotal.WithLabelValues(src.File, out.Result).Inc()
	}()

	fail := func(err error) interfaces.FileOutcome {
		logging.Error("Failed to sync source file, keeping previous copy", "file", src.File, "error", err)
		out.Result = interfaces.FileFailed
		out.Error = err.Error()
		return out
	}

	finalPath := filepath.Join(d.opts.Dir, src.File)
	committed := fileExists(finalPath)
	if committed && !d.manifest.ShouldCheck(src.File, start, d.opts.Window) {
		logging.Debug("Source file checked recently, skipping", "file", src.File)
		out.Result = interfaces.FileSkipped
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	scratch, hash, err := d.fetchToScratch(ctx, src)
	if err != nil {
		return fail(err)
	}
	out.Hash = hash

	if prev, ok := d.manifest.Get(src.File); ok && prev.Hash == hash && committed {
		_ = os.Remove(scratch)
		if err := d.manifest.MarkChecked(src.File, d.now()); err != nil {
			logging.Warn("Failed to persist manifest", "file", src.File, "error", err)
		}
		logging.Info("Source file unchanged", "file", src.File, "hash", hash)
		out.Result = interfaces.FileUnchanged
		out.Encoding = prev.Encoding
		return out
	}

	enc, err := d.normalizer.NormalizeFile(scratch)
	if err != nil {
		_ = os.Remove(scratch)
		return fail(err)
	}
	if err := os.Rename(scratch, finalPath); err != nil {
		_ = os.Remove(scratch)
		return fail(fmt.Errorf("failed to commit %s: %w", src.File, err))
	}

	now := d.now()
	if err := d.manifest.Record(src.File, Entry{
		Hash:         hash,
		DownloadedAt: now,
		CheckedAt:    now,
		Source:       "remote",
		Encoding:     enc,
	}); err != nil {
		logging.Warn("Failed to persist manifest", "file", src.File, "error", err)
	}

	logging.Info("Source file updated", "file", src.File, "hash", hash, "encoding", enc)
	out.Result = interfaces.FileUpdated
	out.Encoding = enc
	return out
}

// fetchToScratch downloads src into a fresh scratch file and returns its path
// with the SHA-256 of the fetched bytes.
func (d *Downloader) fetchToScratch(ctx context.Context, src medicamentsparser.Source) (string, string, error) {
	f, err := os.CreateTemp(filepath.Join(d.opts.Dir, scratchDir), src.File+".*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()

	hasher := sha256.New()
	fetchErr := d.fetcher.Fetch(ctx, d.URL(src), io.MultiWriter(f, hasher))
	closeErr := f.Close()
	if err := errors.Join(fetchErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	return path, hex.EncodeToString(hasher.Sum(nil)), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist) && err == nil
}
