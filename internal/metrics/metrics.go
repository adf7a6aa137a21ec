package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	pollFetches      *prometheus.CounterVec
	sourceAttempts   *prometheus.CounterVec
	commandFailures  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	snapshotsWritten prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		pollFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govclient_poll_fetches_total",
			Help: "completed poll fetches by read and result",
		}, []string{"read", "result"}),
		sourceAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govclient_proposal_source_attempts_total",
			Help: "single proposal loads by source and result",
		}, []string{"source", "result"}),
		commandFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govclient_command_failures_total",
			Help: "failed write commands",
		}, []string{"command"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govproxy_http_requests_total",
			Help: "proxy requests by route and status",
		}, []string{"route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govproxy_http_request_duration_seconds",
			Help:    "proxy request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		snapshotsWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "govproxy_snapshots_written_total",
			Help: "proposal snapshots stored",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObservePoll matches poll.WithObserver.
func (m *Metrics) ObservePoll(read string, err error) {
	m.pollFetches.WithLabelValues(read, result(err)).Inc()
}

// ObserveSource matches reads.WithSourceObserver.
func (m *Metrics) ObserveSource(source string, err error) {
	m.sourceAttempts.WithLabelValues(source, result(err)).Inc()
}

func (m *Metrics) CommandFailed(command string) {
	m.commandFailures.WithLabelValues(command).Inc()
}

func (m *Metrics) SnapshotWritten() {
	m.snapshotsWritten.Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
