// Package health provides health checking functionality for the BDPM API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/bdpm-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	interval  time.Duration
	nextRun   func() time.Time
	now       func() time.Time
}

// NewHealthChecker creates a health checker. interval is the refresh period;
// nextRun reports the next scheduled refresh and may be nil.
func NewHealthChecker(dataStore interfaces.DataStore, interval time.Duration, nextRun func() time.Time) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		interval:  interval,
		nextRun:   nextRun,
		now:       time.Now,
	}
}

// HealthCheck grades the service on the published snapshot and on how long
// ago a refresh last succeeded.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snap := h.dataStore.Current()
	lastRefresh := h.dataStore.GetLastRefresh()
	isUpdating := h.dataStore.IsUpdating()
	age := h.now().Sub(lastRefresh)

	specialites := 0
	if snap != nil {
		specialites = snap.Specialites.Len()
	}

	switch {
	case snap == nil || specialites == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case age > 2*h.interval:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case age > h.interval+time.Hour:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_refresh":   formatTime(lastRefresh),
		"last_update":    formatTime(h.dataStore.GetLastUpdated()),
		"data_age_hours": math.Round(age.Hours()*10) / 10,
		"is_updating":    isUpdating,
		"next_update":    formatTime(h.CalculateNextUpdate()),
	}
	if snap != nil {
		data["tables"] = snap.Counts()
		data["fingerprint"] = snap.ETag()
	}
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		data["uptime_seconds"] = int64(h.now().Sub(start).Seconds())
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled refresh time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	if h.nextRun != nil {
		if next := h.nextRun(); !next.IsZero() {
			return next
		}
	}
	return h.dataStore.GetLastRefresh().Add(h.interval)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
