package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voidstate/infrastructure/config"
	"voidstate/infrastructure/persistence/resilience"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:      ":0",
		Environment:        "development",
		ServiceName:        "void-state",
		MaxBodyBytes:       4096,
		RequestTimeout:     5 * time.Second,
		ShutdownTimeout:    time.Second,
		ClientIPHeader:     "CF-Connecting-IP",
		StoreBackend:       config.StoreMemory,
		BreakerEnabled:     true,
		BreakerTimeout:     time.Second,
		BreakerMinRequests: 10,
		BreakerThreshold:   0.8,
		PresenceSalt:       "void-salt",
		EchoProbability:    0.2,
		MaxEchoes:          500,
		RateLimit:          10,
		RateWindow:         time.Minute,
		LogLevel:           "error",
		EnableMetrics:      true,
	}
}

func TestInitializeContainer_Memory(t *testing.T) {
	container, cleanup, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()

	_, isBreaker := container.Store.(*resilience.BreakerStore)
	assert.True(t, isBreaker)
	require.NotNil(t, container.Collector)

	public := container.PublicHandler()
	rec := httptest.NewRecorder()
	public.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/thought", strings.NewReader(`{"text":"wired together"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Contains(t, rec.Body.String(), `"count":1`)

	admin := container.AdminHandler()
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "void_thoughts_accepted_total 1")
}

func TestContainer_LambdaHandler(t *testing.T) {
	cfg := testConfig()
	cfg.EnableTracing = true
	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	handler := container.LambdaHandler()
	_, isMux := handler.(*chi.Mux)
	require.True(t, isMux, "the Lambda adapter needs a chi router")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestInitializeContainer_PebbleWithBlocklist(t *testing.T) {
	dir := t.TempDir()
	blocklist := filepath.Join(dir, "blocklist.yaml")
	require.NoError(t, os.WriteFile(blocklist, []byte("words: [forbidden]\n"), 0o600))

	cfg := testConfig()
	cfg.StoreBackend = config.StorePebble
	cfg.PebblePath = filepath.Join(dir, "db")
	cfg.BlocklistPath = blocklist
	cfg.EnableMetrics = false
	cfg.BreakerEnabled = false

	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, container.Collector)

	rec := httptest.NewRecorder()
	container.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	container.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeContainer_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "redis"

	_, _, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProvideLogger_InvalidLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"

	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}
