package metrics

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcv",
			Subsystem: "export",
			Name:      "tasks_total",
			Help:      "导出任务处理总数，按任务类型与结果区分。",
		},
		[]string{"task_type", "result"},
	)

	exportTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartcv",
			Subsystem: "export",
			Name:      "task_duration_seconds",
			Help:      "导出任务耗时（秒）。",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"task_type"},
	)

	exportInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "smartcv",
			Subsystem: "export",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的导出任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录导出任务的处理结果、耗时与并发度。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			exportInProgress.WithLabelValues(taskType).Inc()
			defer exportInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			exportTaskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			ObserveExport(taskType, err)
			return err
		})
	}
}

// ObserveExport 记录一次导出（同步导出直接调用，异步导出由中间件调用）。
func ObserveExport(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	exportTasksTotal.WithLabelValues(kind, result).Inc()
}
