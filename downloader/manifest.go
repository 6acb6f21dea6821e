package downloader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/giygas/bdpm-api/logging"
)

// ManifestFile is the bookkeeping document stored next to the committed files.
const ManifestFile = "meta.json"

// Entry is the per-file bookkeeping record.
type Entry struct {
	Hash         string    `json:"hash"`
	DownloadedAt time.Time `json:"downloadedAt"`
	CheckedAt    time.Time `json:"checkedAt"`
	Source       string    `json:"source,omitempty"`
	Encoding     string    `json:"encoding,omitempty"`
}

// Manifest maps a file name to its last known state. Methods are safe for
// concurrent use by per-file workers.
type Manifest struct {
	path    string
	mu      sync.RWMutex
	entries map[string]Entry
}

// LoadManifest reads the manifest of dir. A missing or unreadable manifest is
// not an error: it yields an empty manifest, which forces every file to be
// re-checked.
func LoadManifest(dir string) *Manifest {
	m := &Manifest{
		path:    filepath.Join(dir, ManifestFile),
		entries: make(map[string]Entry),
	}

	raw, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Failed to read manifest, starting empty", "path", m.path, "error", err)
		}
		return m
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		logging.Warn("Corrupt manifest ignored, all files will be re-checked", "path", m.path, "error", err)
		return m
	}
	if entries != nil {
		m.entries = entries
	}
	return m
}

// Get returns a copy of the entry for file.
func (m *Manifest) Get(file string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[file]
	return e, ok
}

// Entries returns a snapshot copy of all entries.
func (m *Manifest) Entries() map[string]Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries)
}

// MarkChecked advances CheckedAt of an existing entry and persists.
func (m *Manifest) MarkChecked(file string, at time.Time) error {
	m.mu.Lock()
	e, ok := m.entries[file]
	if ok {
		e.CheckedAt = at
		m.entries[file] = e
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no manifest entry for %s", file)
	}
	return m.Save()
}

// Record replaces the entry of file and persists.
func (m *Manifest) Record(file string, e Entry) error {
	m.mu.Lock()
	m.entries[file] = e
	m.mu.Unlock()
	return m.Save()
}

// Save writes the manifest through a temporary file and a rename, so a crash
// never leaves a truncated document behind.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to commit manifest: %w", err)
	}
	return nil
}

// ShouldCheck applies the freshness window to the entry of file.
func (m *Manifest) ShouldCheck(file string, now time.Time, window time.Duration) bool {
	e, ok := m.Get(file)
	return ShouldCheck(e, ok, now, window)
}

// ShouldCheck reports whether file needs a network check at now. It is false
// only when the last check (or download) happened within window.
func ShouldCheck(e Entry, ok bool, now time.Time, window time.Duration) bool {
	if !ok {
		return true
	}
	last := e.CheckedAt
	if last.IsZero() {
		last = e.DownloadedAt
	}
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= window
}
