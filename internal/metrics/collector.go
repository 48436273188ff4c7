// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 审核核心指标收集器
type Collector struct {
	// 审核指标
	moderationsTotal   *prometheus.CounterVec
	moderationDuration *prometheus.HistogramVec
	flagsTotal         *prometheus.CounterVec

	// 服务商指标
	providerErrorsTotal *prometheus.CounterVec
	failOpenTotal       *prometheus.CounterVec

	// 视频任务指标
	tasksSubmitted   prometheus.Counter
	tasksCompleted   *prometheus.CounterVec
	webhooksReceived *prometheus.CounterVec
	pendingTasks     prometheus.Gauge

	// 缓存指标
	policyCacheHits   prometheus.Counter
	policyCacheMisses prometheus.Counter

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器（注册到默认 registry）
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewCollectorWithRegistry 创建指标收集器并注册到指定 registry（测试用）
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}
	factory := promauto.With(reg)

	c.moderationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderations_total",
			Help:      "Total number of moderation decisions",
		},
		[]string{"modality", "status"},
	)

	c.moderationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "moderation_duration_seconds",
			Help:      "Moderation call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"modality"},
	)

	c.flagsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flags_total",
			Help:      "Total number of moderation flags raised",
		},
		[]string{"category", "severity"},
	)

	c.providerErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total number of classification provider failures",
		},
		[]string{"code"},
	)

	c.failOpenTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fail_open_total",
			Help:      "Moderation decisions degraded to fail-open approval",
		},
		[]string{"modality"},
	)

	c.tasksSubmitted = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_tasks_submitted_total",
			Help:      "Video moderation tasks submitted to the provider",
		},
	)

	c.tasksCompleted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_tasks_completed_total",
			Help:      "Video moderation tasks reaching a terminal state",
		},
		[]string{"status", "via"},
	)

	c.webhooksReceived = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Inbound provider webhooks by outcome",
		},
		[]string{"outcome"},
	)

	c.pendingTasks = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "video_tasks_pending",
			Help:      "Video moderation tasks currently pending",
		},
	)

	c.policyCacheHits = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_cache_hits_total",
			Help:      "Policy config cache hits",
		},
	)

	c.policyCacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_cache_misses_total",
			Help:      "Policy config cache misses",
		},
	)

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return c
}

// =============================================================================
// 🎯 记录方法
// =============================================================================

// RecordModeration 记录一次审核决定
func (c *Collector) RecordModeration(modality, status string, duration time.Duration) {
	c.moderationsTotal.WithLabelValues(modality, status).Inc()
	c.moderationDuration.WithLabelValues(modality).Observe(duration.Seconds())
}

// RecordFlag 记录一个标记
func (c *Collector) RecordFlag(category, severity string) {
	c.flagsTotal.WithLabelValues(category, severity).Inc()
}

// RecordProviderError 记录服务商故障
func (c *Collector) RecordProviderError(code string) {
	c.providerErrorsTotal.WithLabelValues(code).Inc()
}

// RecordFailOpen 记录一次降级放行
func (c *Collector) RecordFailOpen(modality string) {
	c.failOpenTotal.WithLabelValues(modality).Inc()
}

// RecordTaskSubmitted 记录视频任务提交
func (c *Collector) RecordTaskSubmitted() {
	c.tasksSubmitted.Inc()
	c.pendingTasks.Inc()
}

// RecordTaskCompleted 记录视频任务终态（via: poll / webhook）
func (c *Collector) RecordTaskCompleted(status, via string) {
	c.tasksCompleted.WithLabelValues(status, via).Inc()
	c.pendingTasks.Dec()
}

// RecordWebhook 记录回调处理结果（outcome: completed / duplicate / unknown_task / invalid）
func (c *Collector) RecordWebhook(outcome string) {
	c.webhooksReceived.WithLabelValues(outcome).Inc()
}

// RecordPolicyCacheHit 记录策略缓存命中
func (c *Collector) RecordPolicyCacheHit() {
	c.policyCacheHits.Inc()
}

// RecordPolicyCacheMiss 记录策略缓存未命中
func (c *Collector) RecordPolicyCacheMiss() {
	c.policyCacheMisses.Inc()
}

// SetPendingTasks 设置当前 pending 任务数（启动对账用）
func (c *Collector) SetPendingTasks(n float64) {
	c.pendingTasks.Set(n)
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
