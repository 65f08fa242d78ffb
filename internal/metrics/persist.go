package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcv",
			Subsystem: "persist",
			Name:      "writes_total",
			Help:      "持久化写入次数，按记录与结果区分。",
		},
		[]string{"key", "result"},
	)

	suggestFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcv",
			Subsystem: "suggest",
			Name:      "fallbacks_total",
			Help:      "AI 协作方失败后使用兜底结果的次数。",
		},
		[]string{"kind"},
	)
)

// ObservePersistWrite 记录一次持久化写入。
func ObservePersistWrite(key string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	persistWritesTotal.WithLabelValues(key, result).Inc()
}

// ObserveSuggestFallback 记录一次兜底。
func ObserveSuggestFallback(kind string) {
	suggestFallbackTotal.WithLabelValues(kind).Inc()
}
