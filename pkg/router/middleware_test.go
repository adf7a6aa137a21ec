package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oceanguard/govclient/internal/chaintest"
	"github.com/oceanguard/govclient/internal/metrics"
	"github.com/oceanguard/govclient/internal/proxy"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestHealthMiddleware(t *testing.T) {
	h := HealthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestOptionsMiddleware(t *testing.T) {
	cr := chi.NewRouter()
	cr.Use(OptionsMiddleware)
	cr.Get("/api/proposal/{id}", ok)

	rec := httptest.NewRecorder()
	cr.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/proposal/3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, OPTIONS", rec.Header().Get("Allow"))
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(rate.NewLimiter(rate.Every(time.Hour), 2))(http.HandlerFunc(ok))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proposal/1", nil))
		codes = append(codes, rec.Code)
	}

	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type observation struct {
	route  string
	status int
}

func TestMetricsMiddleware(t *testing.T) {
	var (
		mu  sync.Mutex
		obs []observation
	)

	cr := chi.NewRouter()
	cr.Use(MetricsMiddleware(func(route string, status int, d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		obs = append(obs, observation{route, status})
	}))
	cr.Get("/api/proposal/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for _, path := range []string{"/api/proposal/1", "/api/proposal/2", "/nowhere"} {
		cr.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, []observation{
		{"/api/proposal/{id}", http.StatusBadRequest},
		{"/api/proposal/{id}", http.StatusBadRequest},
		{"unmatched", http.StatusNotFound},
	}, obs)
}

func TestRouter(t *testing.T) {
	chain := chaintest.New()
	chain.AddProposal(chaintest.RawProposal(1, time.Unix(1_700_000_000, 0)))
	chain.SetActive(1)

	m := metrics.New()
	p := proxy.NewService(chain, chaintest.GovernanceAddress, proxy.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	srv := httptest.NewServer(NewServer(p, nil, m, 0).Handler())
	defer srv.Close()

	for path, code := range map[string]int{
		"/health":              http.StatusOK,
		"/api/proposal/active": http.StatusOK,
		"/api/proposal/1":      http.StatusOK,
		"/api/proposal/x":      http.StatusBadRequest,
		"/api/snapshots":       http.StatusNotFound,
		"/version":             http.StatusOK,
		"/api/chain":           http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, code, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), `govproxy_http_requests_total{route="/api/proposal/{id}",status="200"} 1`))
}
