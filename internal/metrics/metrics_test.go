// internal/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestRecordStatusTransition(t *testing.T) {
	before := counterValue(t, StatusTransitionsCounter.WithLabelValues("available", "sold"))

	RecordStatusTransition("available", "sold")
	RecordStatusTransition("available", "sold")

	after := counterValue(t, StatusTransitionsCounter.WithLabelValues("available", "sold"))
	assert.Equal(t, before+2, after)
}

func TestRecordRealtorLifecycle(t *testing.T) {
	before := counterValue(t, RealtorLifecycleCounter.WithLabelValues("block"))

	RecordRealtorLifecycle("block")

	assert.Equal(t, before+1, counterValue(t, RealtorLifecycleCounter.WithLabelValues("block")))
}
