package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chaintab_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chaintab_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	relaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chaintab_relays_total",
		Help: "Relay attempts by outcome.",
	}, []string{"outcome"})

	settlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chaintab_settlements_total",
		Help: "Successful settlements, direct and relayed.",
	})
)
