package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	NodesProcessed prometheus.Counter
	LinksCreated   prometheus.Counter
	LinksDeleted   prometheus.Counter

	// Computation metrics
	LayoutRuns         *prometheus.CounterVec
	LayoutDuration     *prometheus.HistogramVec
	ClusteringRuns     *prometheus.CounterVec
	ClusteringDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace.
// The collector is a process-wide singleton so repeated construction in
// tests does not trip duplicate registration.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	nodesProcessed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_processed_total",
			Help:      "Total number of nodes produced by data processing",
		},
	)

	linksCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_created_total",
			Help:      "Total number of links created",
		},
	)

	linksDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_deleted_total",
			Help:      "Total number of links deleted",
		},
	)

	layoutRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_runs_total",
			Help:      "Total number of layout computations",
		},
		[]string{"algorithm", "status"},
	)

	layoutDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	clusteringRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clustering_runs_total",
			Help:      "Total number of clustering computations",
		},
		[]string{"algorithm", "status"},
	)

	clusteringDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_duration_seconds",
			Help:      "Clustering computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		nodesProcessed,
		linksCreated,
		linksDeleted,
		layoutRuns,
		layoutDuration,
		clusteringRuns,
		clusteringDuration,
	)

	globalCollector = &Collector{
		registry:           registry,
		HTTPRequests:       httpRequests,
		HTTPDuration:       httpDuration,
		NodesProcessed:     nodesProcessed,
		LinksCreated:       linksCreated,
		LinksDeleted:       linksDeleted,
		LayoutRuns:         layoutRuns,
		LayoutDuration:     layoutDuration,
		ClusteringRuns:     clusteringRuns,
		ClusteringDuration: clusteringDuration,
	}

	return globalCollector
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// ObserveLayout records one layout run
func (c *Collector) ObserveLayout(algorithm string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.LayoutRuns.WithLabelValues(algorithm, status).Inc()
	if err == nil {
		c.LayoutDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	}
}

// ObserveClustering records one clustering run
func (c *Collector) ObserveClustering(algorithm string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.ClusteringRuns.WithLabelValues(algorithm, status).Inc()
	if err == nil {
		c.ClusteringDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	}
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
