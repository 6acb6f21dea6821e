// Package handlers provides HTTP request handlers for the BDPM API endpoints.
// It includes paging, conditional requests, response formatting and input
// validation.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/snapshot"
)

// Source is the attribution carried by every data response.
const Source = "base de données publique des médicaments - gouv.fr"

const (
	DefaultLimit       = 100
	DefaultSearchLimit = 50
	MaxLimit           = 1000
)

// Pagination describes the page returned out of a full result set.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Metadata identifies the dataset a response was computed from.
type Metadata struct {
	LastUpdated string `json:"last_updated"`
	Source      string `json:"source"`
}

// PagedResponse is the envelope of every list endpoint.
type PagedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Metadata   Metadata   `json:"metadata"`
}

// RespondWithJSON writes a JSON response. ?pretty=true indents the body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	var (
		data []byte
		err  error
	)
	if r != nil && isPretty(r) {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	RespondWithJSON(w, r, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

func isPretty(r *http.Request) bool {
	p := r.URL.Query().Get("pretty")
	return p == "true" || p == "1"
}

var errInvalidPaging = errors.New("invalid paging")

// parsePaging reads page and limit from the query string. Limits above
// MaxLimit are clamped.
func parsePaging(r *http.Request, defaultLimit int) (page, limit int, err error) {
	q := r.URL.Query()
	page, limit = 1, defaultLimit

	if v := q.Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", errInvalidPaging)
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer", errInvalidPaging)
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, nil
}

// pageOffset returns the index of the first row of page. Offsets that would
// overflow saturate, which pages past every result.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func newPagination(total, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func metadataOf(s *snapshot.Snapshot) Metadata {
	m := Metadata{Source: Source}
	if !s.LastUpdated.IsZero() {
		m.LastUpdated = s.LastUpdated.UTC().Format(time.RFC3339)
	}
	return m
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
