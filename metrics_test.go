package rxcore

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))

	// 触发一次任务，保证带标签的指标出现在导出结果中
	require.NoError(t, Just(1).SubscribeOn(Immediate()).Subscribe(nil, nil, nil).Err())

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "rxcore_scheduler_tasks_scheduled_total")
	assert.Contains(t, names, "rxcore_scheduler_tasks_completed_total")
	assert.Contains(t, names, "rxcore_unhandled_errors_total")
}

func TestUnhandledErrorsAreCounted(t *testing.T) {
	captureUnhandled(t)
	before := testutil.ToFloat64(metrics.unhandledErrors)

	SingleError[int](errors.New("boom")).Subscribe(nil, nil, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.unhandledErrors))
}

func TestWorkerGaugeTracksParallelSize(t *testing.T) {
	gauge := metrics.workers.WithLabelValues("gauge-parallel")
	before := testutil.ToFloat64(gauge)

	parallel := NewParallel("gauge-parallel", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(gauge))

	parallel.Dispose()
	assert.Equal(t, before, testutil.ToFloat64(gauge))
}
