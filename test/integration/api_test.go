package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/deployconf/internal/application"
	"github.com/eugenenazirov/deployconf/internal/config"
	"github.com/eugenenazirov/deployconf/internal/environment"
)

const configYAML = `
port: "0"
enable_request_logging: false
rate_limit:
  rps: 0
  burst: 0
deployment:
  policy: environmentConditional
  head:
    title: 3D Solar System
    charset: utf-8
    viewport: width=device-width, initial-scale=1
    html_lang: en
    meta:
      - name: description
        content: Explore the solar system in 3D
    link:
      - rel: icon
        type: image/x-icon
        href: /favicon.ico
`

func newHandler(t *testing.T, env environment.Map) http.Handler {
	t.Helper()

	for _, key := range []string{"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "BASE_PATH_POLICY", "BASE_PATH_FIXED"} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "deployconf.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(&config.CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	app, err := application.New(cfg, env, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return app.Server().Handler
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationProductionFlow(t *testing.T) {
	handler := newHandler(t, environment.Map{"NODE_ENV": "production"})

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/config", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from config, got %d", rec.Code)
	}
	var cfgResp struct {
		Record struct {
			BaseURL     string   `json:"baseURL"`
			RenderMode  string   `json:"renderMode"`
			Stylesheets []string `json:"stylesheets"`
		} `json:"record"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&cfgResp); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfgResp.Record.BaseURL != "/3D-solar-system-nuxt-three.js/" {
		t.Fatalf("unexpected base URL %q", cfgResp.Record.BaseURL)
	}
	if cfgResp.Record.RenderMode != "client-only" || len(cfgResp.Record.Stylesheets) != 1 {
		t.Fatalf("unexpected record %+v", cfgResp.Record)
	}

	rec = performRequest(t, handler, http.MethodGet, "/3D-solar-system-nuxt-three.js/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from index, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<title>3D Solar System</title>") {
		t.Fatalf("expected head metadata in index:\n%s", rec.Body.String())
	}
}

func TestIntegrationDevelopmentFlow(t *testing.T) {
	handler := newHandler(t, environment.Map{"NODE_ENV": "development"})

	rec := performRequest(t, handler, http.MethodGet, "/api/config?format=yaml", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from config, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "base_url: /\n") {
		t.Fatalf("expected root base URL:\n%s", rec.Body.String())
	}

	payload, _ := json.Marshal(map[string]any{"policy": "overrideWithFallback", "override": "/custom/"})
	rec = performRequest(t, handler, http.MethodPost, "/api/resolve", payload, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from resolve, got %d", rec.Code)
	}

	var response struct {
		BaseURL string `json:"baseURL"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.BaseURL != "/custom/" {
		t.Fatalf("unexpected base URL %q", response.BaseURL)
	}
}
