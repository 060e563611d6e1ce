package metrics_test

import (
	"testing"
	"time"

	"workforce-engine/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveValidation(t *testing.T) {
	beforeOK := testutil.ToFloat64(metrics.ValidationRunsTotal.WithLabelValues("ok"))
	beforeBad := testutil.ToFloat64(metrics.ValidationRunsTotal.WithLabelValues("violations"))
	beforeSkills := testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("SKILLS"))

	metrics.ObserveValidation(time.Millisecond, 3, map[string]int{"SKILLS": 2, "COVERAGE": 0})
	metrics.ObserveValidation(time.Millisecond, 0, nil)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(metrics.ValidationRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, beforeBad+1, testutil.ToFloat64(metrics.ValidationRunsTotal.WithLabelValues("violations")))
	assert.Equal(t, beforeSkills+2, testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("SKILLS")))
}

func TestObserveForecast(t *testing.T) {
	before := testutil.ToFloat64(metrics.ForecastRowsTotal.WithLabelValues("halfin"))

	metrics.ObserveForecast(10*time.Millisecond, "halfin", 96, 500, 12)

	assert.Equal(t, before+96, testutil.ToFloat64(metrics.ForecastRowsTotal.WithLabelValues("halfin")))
	assert.Equal(t, 500.0, testutil.ToFloat64(metrics.ForecastHistoryRecords))
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.ForecastPeakAgents))
}
