package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 邮件处理计数
	EmailsProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_processed_count",
			Help: "Total number of emails processed",
		},
		[]string{"status"}, // status: success, failed
	)

	// 分类耗时（秒）
	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classify_duration_seconds",
			Help:    "Email classification duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
		},
	)

	// 注册表查询计数
	RegistryLookupCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_lookup_count",
			Help: "Total number of registry lookups",
		},
		[]string{"operation", "result"}, // result: hit, miss
	)

	// 订单拦截计数
	InterceptionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_interception_count",
			Help: "Total number of order interception attempts",
		},
		[]string{"outcome"}, // intercepted, already_intercepted, rejected_shipped, not_found
	)

	// 事件总线发布计数
	BusEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bus_event_count",
			Help: "Total number of events published to the event bus",
		},
		[]string{"level"},
	)

	// 外部应答器调用延迟（毫秒）
	ResponderCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "responder_call_latency_ms",
			Help:    "External responder call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"status"}, // success, error, circuit_open
	)
)

// IncrementEmailProcessed 增加邮件处理计数
func IncrementEmailProcessed(status string) {
	EmailsProcessedCount.WithLabelValues(status).Inc()
}

// RecordClassifyDuration 记录分类耗时
func RecordClassifyDuration(duration time.Duration) {
	ClassifyDuration.Observe(duration.Seconds())
}

// IncrementRegistryLookup 增加注册表查询计数
func IncrementRegistryLookup(operation, result string) {
	RegistryLookupCount.WithLabelValues(operation, result).Inc()
}

// IncrementInterception 增加订单拦截计数
func IncrementInterception(outcome string) {
	InterceptionCount.WithLabelValues(outcome).Inc()
}

// IncrementBusEvent 增加事件总线发布计数
func IncrementBusEvent(level string) {
	BusEventCount.WithLabelValues(level).Inc()
}

// RecordResponderCallLatency 记录外部应答器调用延迟
func RecordResponderCallLatency(status string, duration time.Duration) {
	ResponderCallLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}
