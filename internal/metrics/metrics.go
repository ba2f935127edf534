// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアントやチェックアウトサービスから利用する。
type MetricsCollector interface {
	RecordBackendStatus(statusCode int)
	RecordBackendLatency(duration time.Duration)
	RecordErrorKind(kind string)
	RecordCheckoutOutcome(outcome string)
	RecordGuardDenial()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	backendStatus   *prometheus.CounterVec
	backendLatency  prometheus.Histogram
	errorKind       *prometheus.CounterVec
	checkoutOutcome *prometheus.CounterVec
	guardDenials    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopgate_backend_status_total",
			Help: "バックエンドAPIのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		backendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopgate_backend_latency_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		errorKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopgate_backend_error_total",
			Help: "分類済みエラーの種別ごとの合計数",
		}, []string{"kind"}),
		checkoutOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopgate_checkout_outcome_total",
			Help: "チェックアウトの帰結ごとの合計数",
		}, []string{"outcome"}),
		guardDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopgate_guard_denial_total",
			Help: "アクセスガードによる拒否の合計数",
		}),
	}

	reg.MustRegister(
		c.backendStatus,
		c.backendLatency,
		c.errorKind,
		c.checkoutOutcome,
		c.guardDenials,
	)

	return c
}

// RecordBackendStatus はバックエンドのHTTPステータスコードを記録する。
func (c *Collector) RecordBackendStatus(statusCode int) {
	c.backendStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordBackendLatency はバックエンド呼び出しのレイテンシを記録する。
func (c *Collector) RecordBackendLatency(duration time.Duration) {
	c.backendLatency.Observe(duration.Seconds())
}

// RecordErrorKind は分類済みエラーの種別を記録する。
func (c *Collector) RecordErrorKind(kind string) {
	c.errorKind.WithLabelValues(kind).Inc()
}

// RecordCheckoutOutcome はチェックアウトの帰結を記録する。
func (c *Collector) RecordCheckoutOutcome(outcome string) {
	c.checkoutOutcome.WithLabelValues(outcome).Inc()
}

// RecordGuardDenial はアクセスガードによる拒否を記録する。
func (c *Collector) RecordGuardDenial() {
	c.guardDenials.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
