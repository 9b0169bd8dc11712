package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RoutineGenerationTotal 生成接口成功次数。
	RoutineGenerationTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibecycle_routine_generation_total",
		Help: "Number of successful routine generations.",
	})
	// RoutineGenerationFailedTotal 生成接口失败次数。
	RoutineGenerationFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibecycle_routine_generation_failed_total",
		Help: "Number of failed routine generations.",
	})
	// RoutineGenerationDuration 单次生成调用耗时分布。
	RoutineGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vibecycle_routine_generation_duration_seconds",
		Help:    "Latency of calls to the text generation backend.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	// RateLimitWaitDuration 限流等待耗时分布。
	RateLimitWaitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vibecycle_ratelimit_wait_duration_seconds",
		Help:    "Time spent waiting for a rate limit token.",
		Buckets: prometheus.DefBuckets,
	})
	// RateLimitTimeoutTotal 限流等待超时次数。
	RateLimitTimeoutTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibecycle_ratelimit_timeout_total",
		Help: "Number of rate limit waits that timed out.",
	})
)

var registerOnce sync.Once

// InitMetrics 把指标注册到默认 Registry。
//
// 可以被多次调用（测试里每个用例都会调），只有第一次生效；
// 指标对象本身在包加载时就已创建，未注册时 Inc/Observe 也是安全的。
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RoutineGenerationTotal,
			RoutineGenerationFailedTotal,
			RoutineGenerationDuration,
			RateLimitWaitDuration,
			RateLimitTimeoutTotal,
		)
	})
}
