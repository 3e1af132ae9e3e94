// File: internal/pkg/metrics/client_metrics.go
package metrics

import (
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics 客户端出站请求、合并请求与实时事件的指标
type ClientMetrics struct {
	// 出站请求总数（按路由模板、方法、状态码分组）
	RequestsTotal *prometheus.CounterVec

	// 出站请求延迟直方图
	RequestDuration *prometheus.HistogramVec

	// 进行中的请求数
	RequestsInFlight prometheus.Gauge

	// 合并到已有请求上的 GET 次数
	CoalescedTotal *prometheus.CounterVec

	// 令牌刷新结果
	RefreshTotal *prometheus.CounterVec

	// 收到 / 丢弃的实时事件
	EventsReceived *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec

	// 被取代或被拆除的 hook 请求
	FetchCanceled *prometheus.CounterVec

	routes *PathLimitTracker
}

var (
	// DefaultClientMetrics 默认实例，注册到 GetRegisterer()
	DefaultClientMetrics *ClientMetrics
	defaultOnce          sync.Once
)

// RequestBuckets 针对远端 API 的延迟分布，单位秒
var RequestBuckets = []float64{0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5, 10}

// Default 返回懒加载的默认实例
func Default() *ClientMetrics {
	defaultOnce.Do(func() {
		DefaultClientMetrics = NewClientMetrics("shopfront", GetRegisterer())
	})
	return DefaultClientMetrics
}

// NewClientMetrics 创建指标收集器（使用指定注册表）
func NewClientMetrics(namespace string, registerer prometheus.Registerer) *ClientMetrics {
	if registerer == nil {
		registerer = GetRegisterer()
	}
	factory := promauto.With(registerer)

	return &ClientMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Outbound API requests by route template, method and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Outbound API request latency by route template",
				Buckets:   RequestBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "api_requests_in_flight",
				Help:      "Outbound API requests currently waiting for a response",
			},
		),
		CoalescedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_coalesced_total",
				Help:      "Queued GET calls that joined an identical in-flight request",
			},
			[]string{"route"},
		),
		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refresh_total",
				Help:      "Token refresh attempts by outcome",
			},
			[]string{"outcome"},
		),
		EventsReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_events_received_total",
				Help:      "Realtime events received by event name",
			},
			[]string{"event"},
		),
		EventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_events_dropped_total",
				Help:      "Realtime events dropped by event name and reason",
			},
			[]string{"event", "reason"},
		),
		FetchCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_canceled_total",
				Help:      "Hook fetches that were superseded or torn down before committing",
			},
			[]string{"hook"},
		),
		routes: NewPathLimitTracker(200),
	}
}

// RecordRequest 记录一次出站请求。statusCode 为 0 表示网络失败。
func (m *ClientMetrics) RecordRequest(path, method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	route := m.routes.TrackPath(NormalizeRoute(path))
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncInFlight 请求发出
func (m *ClientMetrics) IncInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

// DecInFlight 请求结束
func (m *ClientMetrics) DecInFlight() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
}

// IncCoalesced 合并命中
func (m *ClientMetrics) IncCoalesced(path string) {
	if m == nil {
		return
	}
	m.CoalescedTotal.WithLabelValues(m.routes.TrackPath(NormalizeRoute(path))).Inc()
}

// IncRefresh 记录刷新结果：success / failed / skipped / discarded
func (m *ClientMetrics) IncRefresh(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.RefreshTotal.WithLabelValues(outcome).Inc()
}

// IncEventReceived 收到实时事件
func (m *ClientMetrics) IncEventReceived(event string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(event).Inc()
}

// IncEventDropped 丢弃实时事件
func (m *ClientMetrics) IncEventDropped(event, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.EventsDropped.WithLabelValues(event, reason).Inc()
}

// IncFetchCanceled hook 请求被取代或拆除
func (m *ClientMetrics) IncFetchCanceled(hook string) {
	if m == nil {
		return
	}
	m.FetchCanceled.WithLabelValues(hook).Inc()
}

var objectIDSegment = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// NormalizeRoute 将路径中的 ID 段替换为 :id，并去掉查询串，防止标签基数爆炸
func NormalizeRoute(path string) string {
	if path == "" {
		return "unknown"
	}
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			path = path[:i]
			break
		}
	}
	for objectIDSegment.MatchString(path) {
		path = objectIDSegment.ReplaceAllString(path, "/:id$1")
	}
	return path
}

// PathLimitTracker 路径标签基数限制追踪器
type PathLimitTracker struct {
	mu       sync.RWMutex
	paths    map[string]struct{}
	maxPaths int
}

// NewPathLimitTracker 创建路径限制追踪器
func NewPathLimitTracker(maxPaths int) *PathLimitTracker {
	return &PathLimitTracker{
		paths:    make(map[string]struct{}),
		maxPaths: maxPaths,
	}
}

// TrackPath 追踪路径，如果超出限制返回 "other"
func (t *PathLimitTracker) TrackPath(path string) string {
	if path == "" {
		return "unknown"
	}

	t.mu.RLock()
	if _, exists := t.paths[path]; exists {
		t.mu.RUnlock()
		return path
	}
	if len(t.paths) >= t.maxPaths {
		t.mu.RUnlock()
		return "other"
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	// 双重检查，防止并发情况下重复添加
	if _, exists := t.paths[path]; exists {
		return path
	}
	if len(t.paths) >= t.maxPaths {
		return "other"
	}
	t.paths[path] = struct{}{}
	return path
}
