// Package metrics 定义服务的 Prometheus 指标；MustRegister 之前调用记录函数是安全的空操作。
package metrics

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "joes"

var (
	registerOnce sync.Once

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	domainEvents  *prometheus.CounterVec
	authOutcomes  *prometheus.CounterVec
	liveListeners prometheus.Gauge
)

// MustRegister 注册全部指标与 Go 运行时采集器，应用启动时调用一次。
func MustRegister() {
	MustRegisterWith(prometheus.DefaultRegisterer)
}

// MustRegisterWith 向指定 Registerer 注册，测试中使用独立的 Registry。
func MustRegisterWith(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		httpRequests = registerCollector(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP 请求数，按方法、路由模板与状态码统计。",
			},
			[]string{"method", "route", "status"},
		))
		httpDuration = registerCollector(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP 请求耗时。",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		))
		domainEvents = registerCollector(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "domain",
				Name:      "events_total",
				Help:      "业务事件计数：文章发布、帖子创建、消息发送等。",
			},
			[]string{"event"},
		))
		authOutcomes = registerCollector(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "attempts_total",
				Help:      "登录/注册/刷新结果分布。",
			},
			[]string{"action", "result"},
		))
		liveListeners = registerCollector(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "live_listeners",
			Help:      "当前在线的聊天 websocket 连接数。",
		}))

		registerRuntimeCollectors(reg)
	})
}

// 业务事件名。
const (
	EventArticlePublished   = "article_published"
	EventArticleUnpublished = "article_unpublished"
	EventThreadCreated      = "thread_created"
	EventPostCreated        = "post_created"
	EventQuestionCreated    = "question_created"
	EventAnswerCreated      = "answer_created"
	EventMessageSent        = "message_sent"
)

// ObserveHTTP 记录一次 HTTP 请求。route 使用 gin 的路由模板，未匹配路由统一记为 unmatched。
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if httpRequests == nil || httpDuration == nil {
		return
	}
	route = normalizeLabel(route, "unmatched")
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordEvent 记录一次业务事件。
func RecordEvent(event string) {
	if domainEvents == nil {
		return
	}
	domainEvents.WithLabelValues(normalizeLabel(event, "unknown")).Inc()
}

// RecordAuth 记录认证动作的结果，例如 ("login", "success")。
func RecordAuth(action, result string) {
	if authOutcomes == nil {
		return
	}
	authOutcomes.WithLabelValues(normalizeLabel(action, "unknown"), normalizeLabel(result, "unknown")).Inc()
}

// LiveListenerDelta 调整在线 websocket 数量。
func LiveListenerDelta(delta int) {
	if liveListeners == nil {
		return
	}
	liveListeners.Add(float64(delta))
}

func normalizeLabel(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// registerCollector 重复注册时复用已存在的同名指标。
func registerCollector[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerRuntimeCollectors(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
