package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/search"
	"github.com/giygas/bdpm-api/snapshot"
	"github.com/giygas/bdpm-api/validation"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// Route names kept from the public API in addition to the table names.
var tableAliases = map[string]medicamentsparser.Table{
	"avis-smr":                     medicamentsparser.TableAvisSMR,
	"avis-asmr":                    medicamentsparser.TableAvisASMR,
	"groupes-generiques":           medicamentsparser.TableGeneriques,
	"disponibilite":                medicamentsparser.TableDisponibilites,
	"interet-therapeutique-majeur": medicamentsparser.TableMITM,
	"infos-importantes":            medicamentsparser.TableInfos,
}

func resolveTable(name string) string {
	if t, ok := tableAliases[name]; ok {
		return string(t)
	}
	return name
}

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore interfaces.DataStore
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore: dataStore,
		health:    health,
	}
}

// current loads the snapshot used for the whole request, or answers 503.
func (h *HTTPHandlerImpl) current(w http.ResponseWriter, r *http.Request) *snapshot.Snapshot {
	snap := h.dataStore.Current()
	if snap == nil {
		w.Header().Set("Retry-After", "30")
		RespondWithError(w, r, http.StatusServiceUnavailable, "Data not loaded yet")
	}
	return snap
}

// notModified sets the cache validators of snap and answers 304 when the
// client already holds them.
func notModified(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot) bool {
	etag := snap.ETag()
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if !snap.LastUpdated.IsZero() {
		w.Header().Set("Last-Modified", snap.LastUpdated.UTC().Format(http.TimeFormat))
	}

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

// ListTable returns a page of a table, ranked against ?q= when present
func (h *HTTPHandlerImpl) ListTable(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePaging(r, DefaultLimit)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		if err := validation.ValidateQuery(query); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	snap := h.current(w, r)
	if snap == nil {
		return
	}

	table, err := snap.Table(resolveTable(chi.URLParam(r, "table")))
	if errors.Is(err, snapshot.ErrUnknownTable) {
		RespondWithError(w, r, http.StatusNotFound, "Unknown table")
		return
	}
	if notModified(w, r, snap) {
		return
	}

	results := table.All()
	if query != "" {
		results = table.Query(query)
	}
	RespondWithJSON(w, r, http.StatusOK, PagedResponse{
		Data:       results.Page(pageOffset(page, limit), limit),
		Pagination: newPagination(results.Len(), page, limit),
		Metadata:   metadataOf(snap),
	})
}

type specialiteResponse struct {
	*snapshot.SpecialiteDetail
	Metadata Metadata `json:"metadata"`
}

// GetSpecialite returns a specialite joined with its related rows
func (h *HTTPHandlerImpl) GetSpecialite(w http.ResponseWriter, r *http.Request) {
	cis := chi.URLParam(r, "cis")
	if err := validation.ValidateCIS(cis); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.current(w, r)
	if snap == nil {
		return
	}

	detail, ok := snap.ExpandSpecialite(cis)
	if !ok {
		RespondWithError(w, r, http.StatusNotFound, "Specialite not found")
		return
	}
	if notModified(w, r, snap) {
		return
	}

	RespondWithJSON(w, r, http.StatusOK, specialiteResponse{SpecialiteDetail: detail, Metadata: metadataOf(snap)})
}

// GetPresentationByCIP finds a presentation by its CIP7 or CIP13 code
func (h *HTTPHandlerImpl) GetPresentationByCIP(w http.ResponseWriter, r *http.Request) {
	cip := chi.URLParam(r, "cip")
	if err := validation.ValidateCIP(cip); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.current(w, r)
	if snap == nil {
		return
	}

	presentation, ok := snap.PresentationByCIP(cip)
	if !ok {
		RespondWithError(w, r, http.StatusNotFound, "Presentation not found")
		return
	}
	if notModified(w, r, snap) {
		return
	}

	RespondWithJSON(w, r, http.StatusOK, presentation)
}

// GetGeneriqueGroup returns a generic group with its member specialites
func (h *HTTPHandlerImpl) GetGeneriqueGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "groupId")
	if err := validation.ValidateGroupID(id); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.current(w, r)
	if snap == nil {
		return
	}

	group, ok := snap.GeneriqueGroup(id)
	if !ok {
		RespondWithError(w, r, http.StatusNotFound, "Generique group not found")
		return
	}
	if notModified(w, r, snap) {
		return
	}

	RespondWithJSON(w, r, http.StatusOK, group)
}

// GlobalSearch searches specialites, presentations and compositions at once
func (h *HTTPHandlerImpl) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		RespondWithError(w, r, http.StatusBadRequest, "Missing search parameter q")
		return
	}
	if err := validation.ValidateQuery(query); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, limit, err := parsePaging(r, DefaultSearchLimit)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.current(w, r)
	if snap == nil {
		return
	}
	if notModified(w, r, snap) {
		return
	}

	hits := search.Slice[snapshot.GlobalHit](snap.GlobalSearch(query))
	RespondWithJSON(w, r, http.StatusOK, PagedResponse{
		Data:       hits.Page(pageOffset(page, limit), limit),
		Pagination: newPagination(hits.Len(), page, limit),
		Metadata:   metadataOf(snap),
	})
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Uptime string         `json:"uptime,omitempty"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()

	response := HealthResponse{
		Status: status,
		Data:   data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		response.Uptime = formatUptimeHuman(time.Since(start))
	}

	w.Header().Set("Cache-Control", "no-store")
	RespondWithJSON(w, r, httpStatus, response)
}
