package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

func buildTestServer(t *testing.T, liveReload bool) (*Server, string) {
	t.Helper()
	outputDir := t.TempDir()
	page := "<html><body><p>Hi</p></body></html>"
	if err := os.WriteFile(filepath.Join(outputDir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}

	cfg := config.Default()
	cfg.Serve.LiveReload = liveReload
	cfg.Serve.Metrics.Enabled = true

	var hub *LiveReloadHub
	if liveReload {
		hub = NewLiveReloadHub()
	}
	return New(cfg, outputDir, hub, prom.NewRegistry()), outputDir
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := buildTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := buildTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestLiveReloadScriptInjected(t *testing.T) {
	srv, _ := buildTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), "__SITEBUILDER_LR__") {
		t.Error("live-reload script not injected into HTML page")
	}
	// Script lands before the closing body tag.
	if !strings.Contains(string(body), "</script></body>") {
		t.Errorf("script not placed before </body>: %s", body)
	}
}

func TestRedirectPassesThroughUnmodified(t *testing.T) {
	srv, _ := buildTestServer(t, true)

	// The file server canonicalizes /index.html to ./ with a 301.
	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "./" {
		t.Errorf("Location = %q", loc)
	}
	body, _ := io.ReadAll(rec.Result().Body)
	if strings.Contains(string(body), "__SITEBUILDER_LR__") {
		t.Error("script injected into a redirect response")
	}
}

func TestNoInjectionWithoutLiveReload(t *testing.T) {
	srv, _ := buildTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	body, _ := io.ReadAll(rec.Result().Body)
	if strings.Contains(string(body), "__SITEBUILDER_LR__") {
		t.Error("script injected although live reload is disabled")
	}
}

func TestHubBroadcastDeduplicates(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Broadcast("build-1")
	hub.Broadcast("build-1") // same ID must not update state twice

	if hub.lastBuildID != "build-1" {
		t.Errorf("lastBuildID = %q", hub.lastBuildID)
	}

	hub.Shutdown()
	hub.Broadcast("build-2")
	if hub.lastBuildID != "build-1" {
		t.Error("broadcast after shutdown should be ignored")
	}
}
