// Package data holds the published snapshot behind a single atomic pointer, so
// readers always see one complete dataset and a refresh never blocks them.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/metrics"
	"github.com/giygas/bdpm-api/snapshot"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer publishes snapshots for zero-downtime updates
type DataContainer struct {
	current         atomic.Pointer[snapshot.Snapshot]
	updating        atomic.Bool
	lastRefresh     atomic.Value // time.Time
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a container with no snapshot published yet
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.lastRefresh.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Current returns the published snapshot, or nil before the first publish.
// Callers load it once per request and keep using that value.
func (dc *DataContainer) Current() *snapshot.Snapshot {
	return dc.current.Load()
}

// Publish atomically replaces the snapshot. The previous one stays valid for
// readers still holding it.
func (dc *DataContainer) Publish(s *snapshot.Snapshot) {
	if s == nil {
		return
	}
	dc.current.Store(s)
	dc.MarkRefreshed(s.BuiltAt)

	for table, n := range s.Counts() {
		metrics.SnapshotRows.WithLabelValues(table).Set(float64(n))
	}
	metrics.SnapshotPublishedTimestamp.Set(float64(s.BuiltAt.Unix()))
}

// GetLastUpdated returns the data timestamp of the published snapshot
func (dc *DataContainer) GetLastUpdated() time.Time {
	if s := dc.current.Load(); s != nil {
		return s.LastUpdated
	}
	return time.Time{}
}

// MarkRefreshed records a refresh that confirmed the published data is
// current, whether or not it produced a new snapshot
func (dc *DataContainer) MarkRefreshed(at time.Time) {
	dc.lastRefresh.Store(at)
}

// GetLastRefresh returns the time of the last successful refresh
func (dc *DataContainer) GetLastRefresh() time.Time {
	if v, ok := dc.lastRefresh.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v, ok := dc.serverStartTime.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
