package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voidstate/application/ports"
	"voidstate/application/services"
	"voidstate/domain/config"
	domainservices "voidstate/domain/services"
	"voidstate/infrastructure/persistence/kv"
	"voidstate/infrastructure/persistence/memory"
	"voidstate/pkg/auth"
	pkgerrors "voidstate/pkg/errors"
	"voidstate/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fixedRandom struct {
	float float64
}

func (r fixedRandom) Float64() float64 { return r.float }
func (r fixedRandom) IntN(int) int     { return 0 }

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store offline")
}

func (failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("store offline")
}

type testServer struct {
	handler   http.Handler
	collector *observability.Collector
}

func newTestServer(t *testing.T, store ports.KVStore, random domainservices.Random) *testServer {
	t.Helper()
	logger := zap.NewNop()
	clock := &fakeClock{now: time.Date(2026, 10, 19, 21, 30, 0, 0, time.UTC)}
	cfg := config.DefaultDomainConfig()

	limiter := auth.NewWindowRateLimiter(kv.NewRateLimitRepository(store), auth.WindowConfig{
		Limit:     cfg.RateLimit,
		Window:    cfg.RateWindow,
		RecordTTL: cfg.RateWindowTTL,
	}, clock)
	service := services.NewVoidService(
		kv.NewCounterRepository(store, logger),
		kv.NewPresenceRepository(store),
		kv.NewEchoRepository(store),
		limiter,
		domainservices.NewEchoPolicy(cfg, nil, random),
		cfg,
		clock,
		nil,
		nil,
		logger,
	)

	collector := observability.NewCollector("void")
	router := NewRouter(service, pkgerrors.NewErrorHandler(logger, false), collector, nil, RouterConfig{
		ClientIPHeader: auth.DefaultClientIPHeader,
		MaxBodyBytes:   4096,
		RequestTimeout: 5 * time.Second,
	}, logger)

	return &testServer{handler: router.Setup(), collector: collector}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func fromClient(ip string) map[string]string {
	return map[string]string{"CF-Connecting-IP": ip}
}

func assertVoidHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSubmitThought(t *testing.T) {
	t.Run("Should accept a thought and return the count", func(t *testing.T) {
		srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

		rec := srv.do(http.MethodPost, "/api/thought", `{"text":"  the night is long  "}`, fromClient("192.0.2.1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":1,"echo":null}`, rec.Body.String())
		assertVoidHeaders(t, rec)

		rec = srv.do(http.MethodPost, "/api/thought", `{"text":"and then morning"}`, fromClient("192.0.2.1"))
		assert.JSONEq(t, `{"count":2,"echo":null}`, rec.Body.String())
	})

	t.Run("Should return an echo when the gate fires", func(t *testing.T) {
		srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.0})

		rec := srv.do(http.MethodPost, "/api/thought", `{"text":"the quiet helps"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":1,"echo":"the quiet helps"}`, rec.Body.String())
	})

	t.Run("Should reject bad requests", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			message string
		}{
			{"empty body", "", "invalid request"},
			{"malformed json", `{"text":`, "invalid request"},
			{"array body", `["hello"]`, "invalid request"},
			{"text not a string", `{"text":42}`, "invalid request"},
			{"trailing data", `{"text":"hello"} {"text":"again"}`, "invalid request"},
			{"oversized body", `{"text":"` + strings.Repeat("a", 5000) + `"}`, "invalid request"},
			{"missing text", `{}`, "thought too brief"},
			{"null text", `{"text":null}`, "thought too brief"},
			{"too short", `{"text":"hi"}`, "thought too brief"},
			{"too long", `{"text":"` + strings.Repeat("a", 201) + `"}`, "thought too long"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

				rec := srv.do(http.MethodPost, "/api/thought", tt.body, nil)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.JSONEq(t, `{"error":"`+tt.message+`"}`, rec.Body.String())
				assertVoidHeaders(t, rec)
			})
		}
	})

	t.Run("Should rate limit per client", func(t *testing.T) {
		srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

		for i := 0; i < 10; i++ {
			rec := srv.do(http.MethodPost, "/api/thought", `{"text":"again and again"}`, fromClient("192.0.2.9"))
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := srv.do(http.MethodPost, "/api/thought", `{"text":"again and again"}`, fromClient("192.0.2.9"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"the void needs time to digest"}`, rec.Body.String())
		assertVoidHeaders(t, rec)

		rec = srv.do(http.MethodPost, "/api/thought", `{"text":"someone else"}`, fromClient("192.0.2.10"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":11,"echo":null}`, rec.Body.String())

		assert.Equal(t, 1.0, testutil.ToFloat64(
			srv.collector.HTTPRequests.WithLabelValues("POST", "/api/thought", "429")))
	})

	t.Run("Should hide store failures", func(t *testing.T) {
		srv := newTestServer(t, failingStore{}, fixedRandom{float: 0.9})

		rec := srv.do(http.MethodPost, "/api/thought", `{"text":"hello void"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"the void encountered an error"}`, rec.Body.String())
		assertVoidHeaders(t, rec)
	})
}

func TestGetState(t *testing.T) {
	t.Run("Should describe an empty void", func(t *testing.T) {
		srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

		rec := srv.do(http.MethodGet, "/api/state", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"presence":0,"mood":"dormant","daily":0}`, rec.Body.String())
		assertVoidHeaders(t, rec)
	})

	t.Run("Should reflect thoughts and heartbeats", func(t *testing.T) {
		srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

		srv.do(http.MethodPost, "/api/thought", `{"text":"one more thought"}`, fromClient("a"))
		srv.do(http.MethodPost, "/api/heartbeat", "", fromClient("a"))
		srv.do(http.MethodPost, "/api/heartbeat", "", fromClient("a"))
		srv.do(http.MethodPost, "/api/heartbeat", "", fromClient("b"))

		rec := srv.do(http.MethodGet, "/api/state", "", nil)
		assert.JSONEq(t, `{"count":1,"presence":2,"mood":"dormant","daily":1}`, rec.Body.String())
	})

	t.Run("Should hide store failures", func(t *testing.T) {
		srv := newTestServer(t, failingStore{}, fixedRandom{float: 0.9})

		rec := srv.do(http.MethodGet, "/api/state", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"the void encountered an error"}`, rec.Body.String())
	})
}

func TestHeartbeat(t *testing.T) {
	srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

	rec := srv.do(http.MethodPost, "/api/heartbeat", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assertVoidHeaders(t, rec)
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t, memory.NewKVStore(nil), fixedRandom{float: 0.9})

	t.Run("Should answer unknown paths and wrong methods with not found", func(t *testing.T) {
		requests := []struct {
			method string
			path   string
		}{
			{http.MethodGet, "/"},
			{http.MethodGet, "/api/unknown"},
			{http.MethodGet, "/health"},
			{http.MethodGet, "/api/thought"},
			{http.MethodPost, "/api/state"},
			{http.MethodGet, "/api/heartbeat"},
			{http.MethodDelete, "/api/state"},
		}

		for _, req := range requests {
			rec := srv.do(req.method, req.path, "", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", req.method, req.path)
			assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
			assertVoidHeaders(t, rec)
		}
	})

	t.Run("Should answer OPTIONS on any path with an empty 200", func(t *testing.T) {
		for _, path := range []string{"/", "/api/thought", "/api/state", "/nowhere/at/all"} {
			rec := srv.do(http.MethodOptions, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code, path)
			assert.Empty(t, rec.Body.String())
			assertVoidHeaders(t, rec)
		}
	})

	t.Run("Should answer browser preflights with the fixed headers", func(t *testing.T) {
		rec := srv.do(http.MethodOptions, "/api/thought", "", map[string]string{
			"Origin":                         "https://void.example",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "content-type",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assertVoidHeaders(t, rec)
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("Should set CORS headers on cross origin requests", func(t *testing.T) {
		rec := srv.do(http.MethodGet, "/api/state", "", map[string]string{"Origin": "https://void.example"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assertVoidHeaders(t, rec)
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
		assert.Equal(t, []string{"*"}, rec.Header().Values("Access-Control-Allow-Origin"))
	})
}

func TestAdminRouter(t *testing.T) {
	collector := observability.NewCollector("void")
	collector.RecordHeartbeat()

	t.Run("Should report health", func(t *testing.T) {
		admin := NewAdminRouter(memory.NewKVStore(nil), collector, zap.NewNop()).Setup()
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("Should report ready when the store answers", func(t *testing.T) {
		admin := NewAdminRouter(memory.NewKVStore(nil), collector, zap.NewNop()).Setup()
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("Should report unavailable when the store fails", func(t *testing.T) {
		admin := NewAdminRouter(failingStore{}, collector, zap.NewNop()).Setup()
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Should serve metrics", func(t *testing.T) {
		admin := NewAdminRouter(memory.NewKVStore(nil), collector, zap.NewNop()).Setup()
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "void_heartbeats_total 1")
	})
}

type markerHandler struct{}

func (*markerHandler) ServeHTTP(http.ResponseWriter, *http.Request) {}

func TestRouter_SegmentMiddleware(t *testing.T) {
	tracer := observability.NewTracer("void-state", true)
	next := &markerHandler{}

	t.Run("Should open segments for the long-running server", func(t *testing.T) {
		rt := NewRouter(nil, nil, nil, tracer, RouterConfig{TraceSegments: true}, zap.NewNop())
		_, untouched := rt.segments()(next).(*markerHandler)
		assert.False(t, untouched)
	})

	t.Run("Should leave segments to the Lambda runtime", func(t *testing.T) {
		rt := NewRouter(nil, nil, nil, tracer, RouterConfig{TraceSegments: false}, zap.NewNop())
		assert.Same(t, next, rt.segments()(next))
	})

	t.Run("Should skip segments when tracing is disabled", func(t *testing.T) {
		rt := NewRouter(nil, nil, nil, observability.NewTracer("void-state", false), RouterConfig{TraceSegments: true}, zap.NewNop())
		assert.Same(t, next, rt.segments()(next))
	})
}
