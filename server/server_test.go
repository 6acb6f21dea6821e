package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/bdpm-api/config"
	"github.com/giygas/bdpm-api/data"
	"github.com/giygas/bdpm-api/health"
	"github.com/giygas/bdpm-api/medicamentsparser"
	"github.com/giygas/bdpm-api/medicamentsparser/entities"
	"github.com/giygas/bdpm-api/snapshot"
	"github.com/go-chi/chi/v5/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Address:        "localhost",
		Env:            "test",
		LogLevel:       "error",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, publish bool) (*Server, *data.DataContainer) {
	t.Helper()
	dc := data.NewDataContainer()
	if publish {
		ds := &medicamentsparser.Dataset{
			Specialites: []entities.Specialite{{Cis: "60234100", Denomination: "DOLIPRANE 500 mg"}},
			Presentations: []entities.Presentation{
				{Cis: "60234100", Cip7: "3400930", Cip13: "3400934998331", Libelle: "plaquette"},
			},
			Stats: map[medicamentsparser.Table]medicamentsparser.FileStats{},
		}
		snap, err := snapshot.FromDataset(context.Background(), ds)
		if err != nil {
			t.Fatalf("FromDataset: %v", err)
		}
		snap.BuiltAt = time.Now()
		dc.Publish(snap)
	}
	return NewServer(cfg, dc, health.NewHealthChecker(dc, 24*time.Hour, nil)), dc
}

func (s *Server) serve(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "8080"
	server, dc := newTestServer(t, cfg, false)

	if server.server.Addr != "localhost:8080" {
		t.Errorf("Expected server address localhost:8080, got %s", server.server.Addr)
	}
	if server.dataStore != dc {
		t.Error("Data store should be set correctly")
	}
	if server.config != cfg {
		t.Error("Config should be set correctly")
	}
	if server.router == nil || server.httpHandler == nil || server.limiter == nil {
		t.Error("Router, handler and limiter should not be nil")
	}
}

func TestSetupMiddleware(t *testing.T) {
	server, _ := newTestServer(t, testConfig(), false)

	server.router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetReqID(r.Context()) == "" {
			t.Error("RequestID should be available in request context")
		}
		if r.RemoteAddr != "127.0.0.1" {
			t.Errorf("RemoteAddr should be the bare client IP, got %s", r.RemoteAddr)
		}
		w.WriteHeader(http.StatusOK)
	})

	rr := server.serve("/test")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("Rate limit headers should be set")
	}
}

func TestSetupRoutes(t *testing.T) {
	server, _ := newTestServer(t, testConfig(), true)

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/v1/medicaments/specialites", http.StatusOK},
		{"/v1/medicaments/specialites?q=doliprane", http.StatusOK},
		{"/v1/medicaments/avis-smr", http.StatusOK},
		{"/v1/medicaments/specialites/60234100", http.StatusOK},
		{"/v1/medicaments/presentations/cip/3400930", http.StatusOK},
		{"/v1/medicaments/generiques/groupe/1", http.StatusNotFound},
		{"/v1/medicaments/groupes-generiques/1", http.StatusNotFound},
		{"/v1/medicaments/search?q=doliprane", http.StatusOK},
		{"/v1/medicaments/search", http.StatusBadRequest},
		{"/v1/medicaments/unknown", http.StatusNotFound},
		{"/database", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := server.serve(tt.path)
			if rr.Code != tt.wantCode {
				t.Errorf("Expected %d for %s, got %d: %s", tt.wantCode, tt.path, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRoutesWithoutData(t *testing.T) {
	server, _ := newTestServer(t, testConfig(), false)

	if rr := server.serve("/v1/medicaments/specialites"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first snapshot, got %d", rr.Code)
	}
	rr := server.serve("/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected unhealthy 503, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["status"] != "unhealthy" {
		t.Errorf("unexpected health body %s", rr.Body.String())
	}
}

func TestMetricsEndpointExposesSnapshotGauges(t *testing.T) {
	server, _ := newTestServer(t, testConfig(), true)

	server.serve("/health")
	rr := server.serve("/metrics")
	body := rr.Body.String()
	for _, name := range []string{"bdpm_snapshot_rows", "http_request_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metric %s in /metrics output", name)
		}
	}
}

func TestDirectAccessBlockedInProd(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "prod"
	server, _ := newTestServer(t, cfg, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for direct access in prod, got %d", rr.Code)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rr = httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 through the proxy, got %d", rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	server, _ := newTestServer(t, testConfig(), true)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Server shutdown should not error: %v", err)
	}

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start should return nil after a graceful shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server should have shutdown within 2 seconds")
	}
}

func BenchmarkNewServer(b *testing.B) {
	cfg := testConfig()
	dc := data.NewDataContainer()
	hc := health.NewHealthChecker(dc, 24*time.Hour, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewServer(cfg, dc, hc)
	}
}
