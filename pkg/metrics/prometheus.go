// Package metrics provides Prometheus metrics for the portal service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the portal exports.
type Manager struct {
	registry prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Remote persistence API
	remoteRequests        *prometheus.CounterVec
	remoteRequestDuration *prometheus.HistogramVec

	// Mutations and sessions
	mutations          *prometheus.CounterVec
	inflightRejections *prometheus.CounterVec
	sessionChecks      *prometheus.CounterVec

	// Collections and leaderboard
	collectionSize      *prometheus.GaugeVec
	leaderboardSyncs    *prometheus.CounterVec
	leaderboardSyncDur  prometheus.Histogram
	leaderboardMembers  prometheus.Gauge
	leaderboardLastSync prometheus.Gauge
}

const (
	namespace = "portal"
	subsystem = "bff"
)

// latencyBuckets are in milliseconds.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals

var (
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out
	runtimeOnce    sync.Once                  //nolint:gochecknoglobals
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, which defaults to prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   latencyBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() {
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.remoteRequests = m.counterVec("remote_requests_total",
		"Calls to the persistence API by operation and outcome", "op", "outcome")
	m.remoteRequestDuration = m.histogramVec("remote_request_duration_milliseconds",
		"Persistence API call latency in milliseconds", "op")

	m.mutations = m.counterVec("mutations_total",
		"Create/update/delete operations by entity kind, operation and outcome", "kind", "op", "outcome")
	m.inflightRejections = m.counterVec("inflight_rejections_total",
		"Submissions rejected because the same operation was already in flight", "kind")
	m.sessionChecks = m.counterVec("session_checks_total",
		"Session checks by resolved status", "status")

	m.collectionSize = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "collection_size",
		Help:      "Number of entities held in each in-memory collection",
	}, []string{"kind"})

	m.leaderboardSyncs = m.counterVec("leaderboard_syncs_total",
		"Leaderboard synchronisations by outcome", "outcome")
	m.leaderboardSyncDur = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "leaderboard_sync_duration_milliseconds",
		Help:      "Leaderboard synchronisation duration in milliseconds",
		Buckets:   latencyBuckets,
	})
	m.leaderboardMembers = m.gauge("leaderboard_members", "Members on the last synchronised leaderboard")
	m.leaderboardLastSync = m.gauge("leaderboard_last_sync_unix", "Unix timestamp of the last successful leaderboard sync")
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// RecordHTTPRequest records a served HTTP request and its latency.
func RecordHTTPRequest(endpoint, method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	globalManager.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(ms(duration))
}

// RecordRemoteCall records one persistence API round trip.
// outcome is "ok" or the failure kind.
func RecordRemoteCall(op, outcome string, duration time.Duration) {
	globalManager.remoteRequests.WithLabelValues(op, outcome).Inc()
	globalManager.remoteRequestDuration.WithLabelValues(op).Observe(ms(duration))
}

// RecordMutation counts a coordinated mutation.
func RecordMutation(kind, op, outcome string) {
	globalManager.mutations.WithLabelValues(kind, op, outcome).Inc()
}

// RecordInFlightRejection counts a duplicate submission.
func RecordInFlightRejection(kind string) {
	globalManager.inflightRejections.WithLabelValues(kind).Inc()
}

// RecordSessionCheck counts a resolved session check.
func RecordSessionCheck(status string) {
	globalManager.sessionChecks.WithLabelValues(status).Inc()
}

// UpdateCollectionSize sets the size gauge for an entity collection.
func UpdateCollectionSize(kind string, size int) {
	globalManager.collectionSize.WithLabelValues(kind).Set(float64(size))
}

// RecordLeaderboardSync records the outcome of a leaderboard sync. On success
// members and at update the member gauge and the last-sync timestamp.
func RecordLeaderboardSync(err error, duration time.Duration, members int, at time.Time) {
	globalManager.leaderboardSyncDur.Observe(ms(duration))
	if err != nil {
		globalManager.leaderboardSyncs.WithLabelValues("error").Inc()
		return
	}
	globalManager.leaderboardSyncs.WithLabelValues("ok").Inc()
	globalManager.leaderboardMembers.Set(float64(members))
	globalManager.leaderboardLastSync.Set(float64(at.Unix()))
}

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RegisterRuntimeCollectors adds Go runtime and process metrics to the
// portal registry. Calling it more than once is a no-op.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
