// Package health exposes Prometheus metrics and liveness/readiness
// HTTP endpoints for a running crawler instance.
package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters and histograms the supervisor and workers
// update as they claim, fetch, save, and reschedule frontier entries.
var (
	ClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_claims_total",
		Help: "Total number of frontier entries claimed by a worker",
	})
	ClaimEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_claim_empty_total",
		Help: "Total number of claim attempts that found nothing ready",
	})
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_fetches_total",
		Help: "Total number of HTTP fetches by outcome",
	}, []string{"outcome"})
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crawler_fetch_duration_seconds",
		Help:    "HTTP fetch latency",
		Buckets: prometheus.DefBuckets,
	})
	SavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_saves_total",
		Help: "Total number of save_article_if_changed calls by outcome",
	}, []string{"outcome"})
	LinksEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_links_enqueued_total",
		Help: "Total number of links enqueued into the frontier",
	})
	WorkersRespawnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawler_workers_respawned_total",
		Help: "Total number of worker goroutines the supervisor restarted after a crash",
	})
)
