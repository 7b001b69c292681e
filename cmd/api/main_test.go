package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"omc/internal/app"
	"omc/internal/config"
	"omc/internal/core"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"APP_ENV":                "local",
		"ZAKEN_DOMAIN":           "zaken.example.nl",
		"KLANTEN_DOMAIN":         "klanten.example.nl",
		"OBJECTEN_DOMAIN":        "objecten.example.nl",
		"OBJECTTYPEN_DOMAIN":     "objecttypen.example.nl",
		"BESLUITEN_DOMAIN":       "besluiten.example.nl",
		"NOTIFY_API_KEY":         "test-key",
		"NOTIFY_TEMPLATES_JSON":  `{"case_created":{"email":"tpl-1"}}`,
		"TASK_OBJECT_TYPE_UUIDS": "3e852115-277a-4570-873a-9a64be3aeb34",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func buildTestServer(t *testing.T) *core.Server {
	t.Helper()
	setTestEnv(t)

	cfg, err := config.LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	components, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	srv, err := buildServer(cfg, components, logger)
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := buildTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health: got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp["status"])
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv := buildTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /events/version: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"OMC v", "ZakenAPI v2.0.0", "NotifyNL v2.0.0"} {
		if !strings.Contains(body, want) {
			t.Errorf("version report %s does not mention %q", body, want)
		}
	}
}

func TestListenEndpoint_UnsupportedScenario(t *testing.T) {
	srv := buildTestServer(t)

	body := `{"actie":"create","kanaal":"zaken","resource":"resultaat",
		"hoofdObject":"https://zaken.example.nl/zaken/api/v1/zaken/5ed9e3a3-2c2b-4d3e-9e0e-4b1c8a1f7d10",
		"resourceUrl":"https://zaken.example.nl/zaken/api/v1/resultaten/0c9a7b2e-3d4f-4a5b-8c6d-7e8f9a0b1c2d",
		"aanmaakdatum":"2026-03-01T10:00:00Z","kenmerken":{"bronorganisatie":"002220647"}}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/listen", strings.NewReader(body)))

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("POST /events/listen: got %d, want 501; body: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on the response")
	}
}

func TestListenEndpoint_TopLevelOrphans(t *testing.T) {
	srv := buildTestServer(t)

	body := `{"actie":"create","kanaal":"zaken","resource":"zaak",
		"hoofdObject":"https://zaken.example.nl/zaken/api/v1/zaken/5ed9e3a3-2c2b-4d3e-9e0e-4b1c8a1f7d10",
		"resourceUrl":"https://zaken.example.nl/zaken/api/v1/zaken/5ed9e3a3-2c2b-4d3e-9e0e-4b1c8a1f7d10",
		"kenmerken":{},"onverwacht":true}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events/listen", strings.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
}
