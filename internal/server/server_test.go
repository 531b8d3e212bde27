package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/triage"
)

func newTestServer(t *testing.T, catalogPath string) *Server {
	t.Helper()
	store := catalog.NewStore(catalog.Default())
	engine := triage.NewEngine(triage.Options{Store: store})
	return New(Options{
		Engine:      engine,
		Store:       store,
		CatalogPath: catalogPath,
	})
}

func doClassify(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/classify", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestClassifyCritical(t *testing.T) {
	rec := doClassify(t, newTestServer(t, ""), `{"symptom_text":"胸痛且呼吸困難"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp classifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Level != catalog.LevelCritical {
		t.Fatalf("expected critical, got %s", resp.Result.Level)
	}
	if !resp.Result.Bypass {
		t.Fatalf("expected bypass")
	}
	if resp.RequestID == "" {
		t.Fatalf("expected a request id")
	}
	if len(resp.Response.EmergencyContacts) == 0 || resp.Response.EmergencyContacts[0] != "119" {
		t.Fatalf("expected 119 first in contacts, got %v", resp.Response.EmergencyContacts)
	}
}

func TestClassifyWithAge(t *testing.T) {
	rec := doClassify(t, newTestServer(t, ""), `{"symptom_text":"囟門凸起","age":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp classifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Result.Level != catalog.LevelCritical {
		t.Fatalf("expected critical for infant fontanelle, got %s", resp.Result.Level)
	}
}

func TestClassifyEmptyInputIsBadRequest(t *testing.T) {
	rec := doClassify(t, newTestServer(t, ""), `{"symptom_text":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "invalid_input" {
		t.Fatalf("unexpected error code %q", resp.Error)
	}
}

func TestClassifyInvalidJSON(t *testing.T) {
	rec := doClassify(t, newTestServer(t, ""), `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestClassifyMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/classify", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, "").Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, "").Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCatalogStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, "").Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status catalogStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Version != catalog.BuiltinVersion || status.Rules == 0 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestCatalogReloadWithoutFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
	rec := httptest.NewRecorder()
	newTestServer(t, "").Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestCatalogReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	good := `
version: v2
rules:
  - id: chest_pain
    term: 胸痛
    category: cardiovascular
    level: critical
`
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newTestServer(t, path)
	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if s.store.Snapshot().Version != "v2" {
		t.Fatalf("store should publish reloaded catalog")
	}
}

func TestCatalogReloadRejectsInvalidAndKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	bad := `
version: v3
rules:
  - id: broken
    term: ""
    category: cardiovascular
    level: critical
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newTestServer(t, path)
	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if s.store.Snapshot().Version != catalog.BuiltinVersion {
		t.Fatalf("invalid catalog must not replace the active snapshot")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after context cancellation")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "")
	doClassify(t, s, `{"symptom_text":"輕微頭痛"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("triage_classifications_total")) {
		t.Fatalf("metrics output missing classification counter")
	}
}
