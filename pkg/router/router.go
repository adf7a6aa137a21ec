package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oceanguard/govclient/internal/chain"
	"github.com/oceanguard/govclient/internal/metrics"
	"github.com/oceanguard/govclient/internal/proxy"
	"github.com/oceanguard/govclient/internal/version"
	"golang.org/x/time/rate"
)

type Router struct {
	proxy     *proxy.Service
	chain     *chain.Service
	metrics   *metrics.Metrics
	rateLimit int
}

// NewServer builds the proxy API. The chain service and the metrics are
// optional. A rateLimit of 0 disables rate limiting.
func NewServer(p *proxy.Service, ch *chain.Service, m *metrics.Metrics, rateLimit int) *Router {
	return &Router{
		proxy:     p,
		chain:     ch,
		metrics:   m,
		rateLimit: rateLimit,
	}
}

// Handler returns the configured routes.
func (r *Router) Handler() http.Handler {
	cr := chi.NewRouter()

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(1 << 20)) // Limit request bodies to 1MB
	if r.rateLimit > 0 {
		cr.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(r.rateLimit), r.rateLimit)))
	}
	if r.metrics != nil {
		cr.Use(MetricsMiddleware(r.metrics.ObserveRequest))
	}
	cr.Use(middleware.Compress(5))

	// instantiate handlers
	v := version.NewService()

	// configure routes
	cr.Get("/version", v.Current)

	if r.chain != nil {
		cr.Get("/api/chain", r.chain.Info)
	}

	cr.Route("/api/proposal", func(cr chi.Router) {
		cr.Get("/active", r.proxy.GetActive)
		cr.Get("/{id}", r.proxy.GetProposal)
	})

	cr.Get("/api/snapshots", r.proxy.GetSnapshots)

	if r.metrics != nil {
		cr.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	return cr
}

// Start serves the API until the listener fails.
func (r *Router) Start(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%v", port), r.Handler())
}
