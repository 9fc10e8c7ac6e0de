// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/geoscope/internal/models"
)

var (
	// Analysis Metrics
	CapturesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoscope_captures_ingested_total",
			Help: "Total number of captures accepted for analysis",
		},
	)

	CapturesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_captures_rejected_total",
			Help: "Total number of captures rejected at the ingestion boundary",
		},
		[]string{"reason"}, // "invalid_json", "validation"
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoscope_analysis_duration_seconds",
			Help:    "Time spent fusing, profiling and classifying one capture",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	AnalysisErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoscope_analysis_errors_total",
			Help: "Total number of analyses that failed to produce a verdict",
		},
	)

	RiskVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_risk_verdicts_total",
			Help: "Total number of verdicts by risk level",
		},
		[]string{"level"},
	)

	RiskFactors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_risk_factors_total",
			Help: "Total number of triggered risk rules by factor kind",
		},
		[]string{"kind"},
	)

	AutomationScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoscope_automation_score",
			Help:    "Distribution of behavioral automation scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	GPSValidity = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_gps_validity_total",
			Help: "GPS fixes by validation outcome",
		},
		[]string{"validity"},
	)

	EstimatedPrecision = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_estimated_precision_total",
			Help: "Fused locations by estimated precision tier",
		},
		[]string{"precision"},
	)

	IPResultsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_ip_results_dropped_total",
			Help: "IP results and provider payloads dropped during normalization or truncation",
		},
		[]string{"provider"},
	)

	// Reputation Metrics
	ReputationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_reputation_lookups_total",
			Help: "Network reputation lookups by source and outcome",
		},
		[]string{"source", "result"}, // source: "anonymous_ip", "asn", "cidr"; result: "flagged", "clean", "error"
	)

	ReputationCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_reputation_cache_requests_total",
			Help: "Reputation result cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoscope_store_operation_duration_seconds",
			Help:    "Duration of verdict store operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_store_errors_total",
			Help: "Verdict store operation failures",
		},
		[]string{"backend", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geoscope_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_events_published_total",
			Help: "Events published to the bus by topic",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_event_publish_errors_total",
			Help: "Event publish failures by topic",
		},
		[]string{"topic"},
	)

	RiskAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoscope_risk_alerts_total",
			Help: "High risk verdicts raised as alerts",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscope_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoscope_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoscope_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordAnalysis records the outcome of one completed analysis.
func RecordAnalysis(duration time.Duration, result *models.AnalysisResult) {
	AnalysisDuration.Observe(duration.Seconds())
	GPSValidity.WithLabelValues(string(result.FusedLocation.GPSValidity)).Inc()
	EstimatedPrecision.WithLabelValues(string(result.FusedLocation.EstimatedPrecision)).Inc()
	AutomationScores.Observe(float64(result.BehaviorProfile.AutomationScore))
	RiskVerdicts.WithLabelValues(string(result.RiskVerdict.RiskLevel)).Inc()
	for _, f := range result.RiskVerdict.RiskFactors {
		RiskFactors.WithLabelValues(string(f.Kind)).Inc()
	}
}

// RecordStoreOperation records a store call and its failure, if any.
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordReputationLookup records one reputation source lookup.
func RecordReputationLookup(source string, flagged bool, err error) {
	result := "clean"
	switch {
	case err != nil:
		result = "error"
	case flagged:
		result = "flagged"
	}
	ReputationLookups.WithLabelValues(source, result).Inc()
}

// RecordReputationCache records a reputation cache hit or miss.
func RecordReputationCache(hit bool) {
	if hit {
		ReputationCacheRequests.WithLabelValues("hit").Inc()
		return
	}
	ReputationCacheRequests.WithLabelValues("miss").Inc()
}

// RecordEventPublish records a publish attempt on topic.
func RecordEventPublish(topic string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
