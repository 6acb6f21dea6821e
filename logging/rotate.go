package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logPrefix = "bdpm-"

// RotatingWriter writes to one file per ISO week and starts a numbered file
// when the current one would exceed maxFileSize. Files older than the
// retention period are pruned by a background goroutine.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu   sync.Mutex
	file *os.File
	week string
	seq  int
	size int64
	now  func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRotatingWriter creates the log directory and opens the file of the
// current week. maxFileSize <= 0 disables size rotation.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	w := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.open(weekKey(w.now()), 0); err != nil {
		return nil, err
	}
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (w *RotatingWriter) fileName(week string, seq int) string {
	if seq == 0 {
		return fmt.Sprintf("%s%s.log", logPrefix, week)
	}
	return fmt.Sprintf("%s%s_%02d.log", logPrefix, week, seq)
}

// open switches to the given week, skipping numbered files already full.
// Caller holds mu.
func (w *RotatingWriter) open(week string, seq int) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	for {
		path := filepath.Join(w.dir, w.fileName(week, seq))
		info, err := os.Stat(path)
		if err == nil && w.maxFileSize > 0 && info.Size() >= w.maxFileSize {
			seq++
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		w.file = f
		w.week = week
		w.seq = seq
		w.size = 0
		if info != nil {
			w.size = info.Size()
		}
		return nil
	}
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(w.now())
	switch {
	case week != w.week:
		if err := w.open(week, 0); err != nil {
			return 0, err
		}
	case w.maxFileSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxFileSize:
		if err := w.open(week, w.seq+1); err != nil {
			return 0, err
		}
	}
	if w.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// StartCleanup prunes expired files now and then every interval until Close.
func (w *RotatingWriter) StartCleanup(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			_ = w.Cleanup()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Cleanup removes log files last modified before the retention cutoff.
func (w *RotatingWriter) Cleanup() error {
	if w.retention <= 0 {
		return nil
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	w.mu.Lock()
	current := ""
	if w.file != nil {
		current = filepath.Base(w.file.Name())
	}
	w.mu.Unlock()

	cutoff := w.now().Add(-w.retention)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
	return nil
}

// Close stops the cleanup goroutine and closes the current file.
func (w *RotatingWriter) Close() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
		w.cancel = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
