// Package metrics provides Prometheus observability metrics for the forecast
// and validation engines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// VALIDATION METRICS
// =============================================================================

// ValidationRunsTotal counts validation runs by outcome (ok, violations, rejected).
var ValidationRunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "validation",
	Name:      "runs_total",
	Help:      "Total schedule validation runs by outcome",
}, []string{"outcome"})

// ViolationsTotal counts emitted violations by rule.
var ViolationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "validation",
	Name:      "violations_total",
	Help:      "Total violations emitted by violation type",
}, []string{"type"})

// ValidationDurationSeconds tracks time to validate a schedule.
var ValidationDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "validation",
	Name:      "duration_seconds",
	Help:      "Time taken to validate a schedule",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
})

// ShiftsValidated tracks the number of shifts per validation run.
var ShiftsValidated = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "validation",
	Name:      "shifts_per_run",
	Help:      "Number of shifts processed per validation run",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
})

// CalendarLookupErrorsTotal counts swallowed calendar lookup failures.
var CalendarLookupErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "validation",
	Name:      "calendar_lookup_errors_total",
	Help:      "Calendar lookups that failed and were treated as no conflicts",
})

// =============================================================================
// FORECAST METRICS
// =============================================================================

// ForecastDurationSeconds tracks time to generate a forecast.
var ForecastDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "forecast",
	Name:      "duration_seconds",
	Help:      "Time taken to generate a staffing forecast",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
})

// ForecastRowsTotal counts generated forecast rows by staffing method.
var ForecastRowsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "forecast",
	Name:      "rows_total",
	Help:      "Total forecast rows generated by staffing method",
}, []string{"method"})

// ForecastHistoryRecords tracks history records consumed by the last run.
var ForecastHistoryRecords = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "history_records",
	Help:      "Number of history records inside the lookback window of the last run",
})

// ForecastPeakAgents tracks the highest required headcount of the last run.
var ForecastPeakAgents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "forecast",
	Name:      "peak_required_agents",
	Help:      "Highest required agent count in the last generated forecast",
})

// =============================================================================
// PARSER METRICS
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse history input",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// =============================================================================
// HTTP METRICS
// =============================================================================

// HTTPRequestsTotal counts API requests.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "Total number of HTTP requests",
}, []string{"method", "path", "status"})

// HTTPRequestDurationSeconds tracks API latency.
var HTTPRequestDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "path", "status"})

// =============================================================================
// Helper Functions
// =============================================================================

// ObserveValidation records the outcome of one validation run.
func ObserveValidation(d time.Duration, shifts int, countsByType map[string]int) {
	ValidationDurationSeconds.Observe(d.Seconds())
	ShiftsValidated.Observe(float64(shifts))

	total := 0
	for typ, n := range countsByType {
		if n > 0 {
			ViolationsTotal.WithLabelValues(typ).Add(float64(n))
		}
		total += n
	}
	if total == 0 {
		ValidationRunsTotal.WithLabelValues("ok").Inc()
	} else {
		ValidationRunsTotal.WithLabelValues("violations").Inc()
	}
}

// ObserveForecast records the outcome of one forecast run.
func ObserveForecast(d time.Duration, method string, rows int, historyRecords int, peakAgents int) {
	ForecastDurationSeconds.Observe(d.Seconds())
	ForecastRowsTotal.WithLabelValues(method).Add(float64(rows))
	ForecastHistoryRecords.Set(float64(historyRecords))
	ForecastPeakAgents.Set(float64(peakAgents))
}
