// Package metrics exposes Prometheus instrumentation for scraping and
// ranking.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobscout"

type manager struct {
	jobsFound      *prometheus.CounterVec
	jobsSaved      *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	sessions       *prometheus.CounterVec
	sessionJobs    prometheus.Histogram

	rankRequests  prometheus.Counter
	rankBatchSize prometheus.Histogram
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter

	httpRequests *prometheus.CounterVec
}

var registry = prometheus.NewRegistry()

var m = newManager(registry)

func newManager(reg prometheus.Registerer) *manager {
	auto := promauto.With(reg)
	return &manager{
		jobsFound: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_found_total",
			Help:      "Postings returned by sources before deduplication",
		}, []string{"source"}),
		jobsSaved: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_saved_total",
			Help:      "New postings persisted after deduplication",
		}, []string{"source"}),
		sourceFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Source fetch or persistence failures",
		}, []string{"source"}),
		sourceDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Wall time spent per source, by category",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"category"}),
		sessions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_sessions_total",
			Help:      "Completed scraping sessions by status",
		}, []string{"status"}),
		sessionJobs: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_jobs_saved",
			Help:      "Jobs saved per session",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		rankRequests: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_requests_total",
			Help:      "Ranking requests served",
		}),
		rankBatchSize: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_batch_size",
			Help:      "Postings ranked per request",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		}),
		cacheHits: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_cache_hits_total",
			Help:      "Ranked result cache hits",
		}),
		cacheMisses: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_cache_misses_total",
			Help:      "Ranked result cache misses",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
	}
}

func RecordJobsFound(source string, n int)  { m.jobsFound.WithLabelValues(source).Add(float64(n)) }
func RecordJobsSaved(source string, n int)  { m.jobsSaved.WithLabelValues(source).Add(float64(n)) }
func RecordSourceFailure(source string)     { m.sourceFailures.WithLabelValues(source).Inc() }
func RecordSourceDuration(category string, seconds float64) {
	m.sourceDuration.WithLabelValues(category).Observe(seconds)
}

func RecordSession(success bool, jobsSaved int) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.sessions.WithLabelValues(status).Inc()
	m.sessionJobs.Observe(float64(jobsSaved))
}

func RecordRankRequest(batchSize int) {
	m.rankRequests.Inc()
	m.rankBatchSize.Observe(float64(batchSize))
}

func RecordCacheHit()  { m.cacheHits.Inc() }
func RecordCacheMiss() { m.cacheMisses.Inc() }

func RecordHTTPRequest(route, method, status string) {
	m.httpRequests.WithLabelValues(route, method, status).Inc()
}

// Registry returns the registry all jobscout metrics live on, kept separate
// from the default one so /metrics stays free of Go runtime noise.
func Registry() *prometheus.Registry {
	return registry
}
