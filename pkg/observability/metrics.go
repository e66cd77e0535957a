package observability

import (
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Build outcome labels
const (
	BuildStatusSuccess   = "success"
	BuildStatusFailed    = "failed"
	BuildStatusCancelled = "cancelled"
)

// Candidate validation labels
const (
	CandidateAccepted = "accepted"
	CandidateDropped  = "dropped"
)

// Metrics holds the engine's prometheus instruments. Each instance
// owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prom.Registry

	buildsTotal     *prom.CounterVec
	buildSeconds    *prom.HistogramVec
	batchesTotal    *prom.CounterVec
	candidatesTotal *prom.CounterVec
	querySeconds    *prom.HistogramVec
	storeOpsTotal   *prom.CounterVec
}

// NewMetrics creates and registers the engine metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		buildsTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgraph_builds_total",
			Help: "Total number of graph builds by outcome",
		}, []string{"mode", "status"}),
		buildSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kgraph_build_seconds",
			Help:    "Graph build duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"mode"}),
		batchesTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgraph_enrichment_batches_total",
			Help: "Total number of enrichment batches by outcome",
		}, []string{"status"}),
		candidatesTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgraph_relationship_candidates_total",
			Help: "Relationship candidates returned by the inference collaborator",
		}, []string{"result"}),
		querySeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kgraph_query_seconds",
			Help:    "Graph query duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op"}),
		storeOpsTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgraph_store_ops_total",
			Help: "Total number of graph store operations",
		}, []string{"op", "success"}),
	}

	m.registry.MustRegister(
		m.buildsTotal,
		m.buildSeconds,
		m.batchesTotal,
		m.candidatesTotal,
		m.querySeconds,
		m.storeOpsTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBuild records a completed build attempt
func (m *Metrics) RecordBuild(mode, status string, duration time.Duration) {
	m.buildsTotal.WithLabelValues(mode, status).Inc()
	m.buildSeconds.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordBatch records an enrichment batch outcome
func (m *Metrics) RecordBatch(success bool) {
	if success {
		m.batchesTotal.WithLabelValues("success").Inc()
	} else {
		m.batchesTotal.WithLabelValues("failed").Inc()
	}
}

// RecordCandidates records validated candidate counts for a batch
func (m *Metrics) RecordCandidates(accepted, dropped int) {
	m.candidatesTotal.WithLabelValues(CandidateAccepted).Add(float64(accepted))
	m.candidatesTotal.WithLabelValues(CandidateDropped).Add(float64(dropped))
}

// RecordQuery records a query duration
func (m *Metrics) RecordQuery(op string, duration time.Duration) {
	m.querySeconds.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordStoreOp records a store operation outcome
func (m *Metrics) RecordStoreOp(op string, success bool) {
	m.storeOpsTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}
