// Scheduler metrics for rxcore
// 调度器与订阅的prometheus指标
package rxcore

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type schedulerMetrics struct {
	tasksScheduled  *prometheus.CounterVec
	tasksCompleted  *prometheus.CounterVec
	tasksFailed     *prometheus.CounterVec
	workers         *prometheus.GaugeVec
	unhandledErrors prometheus.Counter
}

var metrics = newSchedulerMetrics()

func newSchedulerMetrics() *schedulerMetrics {
	return &schedulerMetrics{
		tasksScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rxcore",
			Subsystem: "scheduler",
			Name:      "tasks_scheduled_total",
			Help:      "Tasks submitted to a scheduler worker.",
		}, []string{"scheduler"}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rxcore",
			Subsystem: "scheduler",
			Name:      "tasks_completed_total",
			Help:      "Tasks that returned normally.",
		}, []string{"scheduler"}),
		tasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rxcore",
			Subsystem: "scheduler",
			Name:      "tasks_failed_total",
			Help:      "Tasks that panicked and were recovered by the worker.",
		}, []string{"scheduler"}),
		workers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rxcore",
			Subsystem: "scheduler",
			Name:      "workers",
			Help:      "Live workers per scheduler.",
		}, []string{"scheduler"}),
		unhandledErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rxcore",
			Name:      "unhandled_errors_total",
			Help:      "Failures that reached a subscription without an error callback.",
		}),
	}
}

func (m *schedulerMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.tasksScheduled,
		m.tasksCompleted,
		m.tasksFailed,
		m.workers,
		m.unhandledErrors,
	}
}

// RegisterMetrics 把rxcore的指标注册到给定的registerer，重复注册不视为错误
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range metrics.collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
