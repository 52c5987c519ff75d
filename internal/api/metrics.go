package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qualify_http_requests_total",
			Help: "HTTP requests served by the qualification API",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qualify_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qualify_evaluations_total",
			Help: "Client profiles evaluated against the lender catalog",
		},
		[]string{"endpoint"},
	)

	qualifiedLenders = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qualify_qualified_lenders",
			Help:    "Number of qualified lenders per evaluation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	catalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qualify_catalog_refreshes_total",
			Help: "Catalog refreshes requested through the API",
		},
		[]string{"result"},
	)
)
