// Package interfaces defines core abstractions for the BDPM API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/bdpm-api/snapshot"
)

// File outcomes of a sync.
const (
	FileSkipped   = "skipped"
	FileUnchanged = "unchanged"
	FileUpdated   = "updated"
	FileFailed    = "failed"
)

// FileOutcome is the result of processing one source file during a sync.
type FileOutcome struct {
	File     string        `json:"file"`
	Result   string        `json:"result"`
	Hash     string        `json:"hash,omitempty"`
	Encoding string        `json:"encoding,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SyncReport summarizes one pass over every source file.
type SyncReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Files      []FileOutcome `json:"files"`
}

// Count returns how many files ended with the given result.
func (r *SyncReport) Count(result string) int {
	n := 0
	for _, f := range r.Files {
		if f.Result == result {
			n++
		}
	}
	return n
}

// Changed reports whether at least one committed file was replaced.
func (r *SyncReport) Changed() bool {
	return r.Count(FileUpdated) > 0
}

// DataStore holds the published snapshot. Readers call Current once per
// request and work on that snapshot only.
type DataStore interface {
	Current() *snapshot.Snapshot
	Publish(s *snapshot.Snapshot)
	GetLastUpdated() time.Time
	MarkRefreshed(at time.Time)
	GetLastRefresh() time.Time
	GetServerStartTime() time.Time

	BeginUpdate() bool
	EndUpdate()
	IsUpdating() bool
}

// Downloader brings the committed source files up to date.
type Downloader interface {
	Sync(ctx context.Context) (*SyncReport, error)
}

// SnapshotBuilder constructs a new snapshot from the committed files.
type SnapshotBuilder interface {
	Build(ctx context.Context) (*snapshot.Snapshot, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns status, response data and the HTTP status to use
	HealthCheck() (status string, data map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled refresh time
	CalculateNextUpdate() time.Time
}

// HTTPHandler defines the contract for the HTTP request handlers.
type HTTPHandler interface {
	ListTable(w http.ResponseWriter, r *http.Request)
	GetSpecialite(w http.ResponseWriter, r *http.Request)
	GetPresentationByCIP(w http.ResponseWriter, r *http.Request)
	GetGeneriqueGroup(w http.ResponseWriter, r *http.Request)
	GlobalSearch(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
