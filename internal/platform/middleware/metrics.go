// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # Prometheus Collectors

const (
	decisionGranted         = "granted"
	decisionDenied          = "denied"
	decisionUnauthenticated = "unauthenticated"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	authzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Permission gate outcomes.",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers the HTTP and authorization collectors once.
func RegisterMetrics(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, authzDecisionsTotal)
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics records request count, latency and in-flight gauge.
//
// The route label is chi's matched pattern ("/api/v1/roles/{id}"), not the raw
// path, so ids do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		startTime := time.Now()
		recorder := newStatusRecorder(writer)
		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := strconv.Itoa(recorder.status)
		httpRequestDuration.WithLabelValues(request.Method, route, status).Observe(time.Since(startTime).Seconds())
		httpRequestsTotal.WithLabelValues(request.Method, route, status).Inc()
	})
}

func recordDecision(result string) {
	authzDecisionsTotal.WithLabelValues(result).Inc()
}
