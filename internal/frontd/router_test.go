package frontd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strongdm/frontconf/internal/appconfig"
	"github.com/strongdm/frontconf/internal/telemetry/otel"
)

func testRuntime(t *testing.T) *runtimeConfig {
	t.Helper()
	dir := t.TempDir()
	return &runtimeConfig{
		ConfigPath: filepath.Join(dir, "config.toml"),
		EnvPrefix:  "FRONTCONF_ROUTER_TEST_",
		UserHeader: "X-Forwarded-User",
	}
}

func testServer(t *testing.T, cfg *runtimeConfig) (*httptest.Server, *appconfig.Store) {
	t.Helper()
	// Keep warnings out of test output.
	store := appconfig.New(
		appconfig.WithSource(newSource(cfg)),
		appconfig.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	store.SetAPIURL(cfg.APIURL)
	srv := httptest.NewServer(newRouter(cfg, store, nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func fetch(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

func TestRouterHealth(t *testing.T) {
	t.Parallel()
	cfg := testRuntime(t)
	srv, store := testServer(t, cfg)

	if resp, body := fetch(t, srv.URL+"/healthz", nil); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("/healthz = %d %q", resp.StatusCode, body)
	}
	if resp, _ := fetch(t, srv.URL+"/health/config", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/health/config before API URL = %d", resp.StatusCode)
	}

	store.SetAPIURL("https://host")
	if resp, body := fetch(t, srv.URL+"/health/config", nil); resp.StatusCode != http.StatusOK || body != "ready" {
		t.Fatalf("/health/config = %d %q", resp.StatusCode, body)
	}
}

func TestRouterPublishesFileConfig(t *testing.T) {
	t.Parallel()
	cfg := testRuntime(t)
	srv, _ := testServer(t, cfg)

	if resp, _ := fetch(t, srv.URL+"/api/config", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/api/config before publish = %d", resp.StatusCode)
	}

	content := `API_URL = "https://host"
REACT_APP_MSAL_AUTH_CLIENTID = "cid"
REACT_APP_MSAL_AUTH_AUTHORITY = "https://login"
REACT_APP_MSAL_REDIRECT_URL = "https://app/cb"
REACT_APP_MSAL_POST_REDIRECT_URL = "https://app/"
`
	if err := os.WriteFile(cfg.ConfigPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resp, body := fetch(t, srv.URL+"/api/config", http.Header{"X-Forwarded-User": {"u123"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/api/config = %d %s", resp.StatusCode, body)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["apiUrl"] != "https://host/api" || payload["activeUserId"] != "u123" {
		t.Fatalf("payload = %v", payload)
	}

	_, page := fetch(t, srv.URL+"/dashboard", nil)
	if !strings.Contains(page, `"REACT_APP_MSAL_AUTH_CLIENTID":"cid"`) {
		t.Fatalf("index not injected with file config: %s", page)
	}

	_, script := fetch(t, srv.URL+"/config.js", nil)
	if !strings.HasPrefix(script, "window.appConfig=") {
		t.Fatalf("/config.js = %s", script)
	}
}

func TestRouterCompressesWhenAsked(t *testing.T) {
	t.Parallel()
	cfg := testRuntime(t)
	srv, _ := testServer(t, cfg)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.Header.Set("Accept-Encoding", "br")
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Encoding"); got != "br" {
		t.Fatalf("Content-Encoding = %q", got)
	}
}

func TestRouterServesCustomDist(t *testing.T) {
	t.Parallel()
	cfg := testRuntime(t)
	cfg.DistDir = t.TempDir()
	if err := os.WriteFile(filepath.Join(cfg.DistDir, "index.html"), []byte("<html><head></head><body>custom</body></html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DistDir, "app.js"), []byte("run()"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	srv, _ := testServer(t, cfg)

	if _, body := fetch(t, srv.URL+"/", nil); !strings.Contains(body, "custom") || !strings.Contains(body, "window.appConfig=") {
		t.Fatalf("index = %s", body)
	}
	if _, body := fetch(t, srv.URL+"/app.js", nil); body != "run()" {
		t.Fatalf("asset = %q", body)
	}
}

func TestRouterRecordsTelemetry(t *testing.T) {
	cfg := testRuntime(t)
	provider, err := otel.Setup(context.Background(), otel.Config{EnableMetrics: true})
	if err != nil {
		t.Fatalf("otel.Setup: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	store := appconfig.New(
		appconfig.WithSource(newSource(cfg)),
		appconfig.WithRecorder(provider.Instruments()),
		appconfig.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	srv := httptest.NewServer(newRouter(cfg, store, provider.Instruments()))
	t.Cleanup(srv.Close)

	fetch(t, srv.URL+"/api/config", nil)

	rm, err := provider.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{"frontconf.http.requests", "frontconf.config.fallbacks", "frontconf.config.api_url_missing"} {
		if !names[want] {
			t.Fatalf("metric %s not recorded; have %v", want, names)
		}
	}
}

func TestShowPrintsResolvedConfig(t *testing.T) {
	clearFrontconfEnv(t)
	path := filepath.Join(t.TempDir(), "app.json")
	if err := os.WriteFile(path, []byte(`{"REACT_APP_MSAL_AUTH_CLIENTID":"cid","activeUserId":"u123"}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := Show([]string{"frontconf", "--config", path, "--env-prefix", "FRONTCONF_SHOW_TEST_", "--api-url", "https://host"}, &out); err != nil {
		t.Fatalf("Show: %v", err)
	}
	var payload struct {
		AppConfig    appconfig.AuthConfig `json:"appConfig"`
		ActiveUserID *string              `json:"activeUserId"`
		APIURL       *string              `json:"apiUrl"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode %s: %v", out.String(), err)
	}
	if payload.AppConfig.ClientID != "cid" {
		t.Fatalf("appConfig = %+v", payload.AppConfig)
	}
	if payload.APIURL == nil || *payload.APIURL != "https://host/api" {
		t.Fatalf("apiUrl = %v", payload.APIURL)
	}
	if payload.ActiveUserID == nil || *payload.ActiveUserID != "u123" {
		t.Fatalf("activeUserId = %v", payload.ActiveUserID)
	}
}

func TestRouterIgnoresUserHeaderUnlessTrusted(t *testing.T) {
	t.Parallel()
	cfg := testRuntime(t)
	cfg.UserHeader = ""
	cfg.APIURL = "https://host"
	srv, _ := testServer(t, cfg)

	_, body := fetch(t, srv.URL+"/api/config", http.Header{"X-Forwarded-User": {"mallory"}})
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if payload["activeUserId"] != nil {
		t.Fatalf("activeUserId = %v, want null without a trusted header", payload["activeUserId"])
	}
}
