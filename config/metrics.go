package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered on the default registry and served on /metrics.
var (
	MetricHTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	MetricHTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	MetricOrdersPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders successfully placed, by store.",
	}, []string{"store_id"})

	MetricCheckoutFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Checkout attempts that failed, by reason.",
	}, []string{"reason"})

	MetricVoucherValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_voucher_validations_total",
		Help: "Voucher validations by outcome.",
	}, []string{"outcome"})

	MetricOutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_outbox_published_total",
		Help: "Outbox events published to Pub/Sub.",
	})

	MetricOutboxDeadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_outbox_dead_total",
		Help: "Outbox events marked DEAD after exhausting retries.",
	})

	MetricReportCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_report_cache_hits_total",
		Help: "Analytics report payloads served from cache.",
	})

	MetricReportCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_report_cache_misses_total",
		Help: "Analytics report payloads computed from the database.",
	})
)
