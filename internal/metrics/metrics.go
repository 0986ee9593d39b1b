// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// api.StatusRecorderを実装し、アップストリームAPI呼び出しの
// レイテンシとステータスコードを観測する。
type Collector struct {
	pageRenders     *prometheus.CounterVec
	upstreamStatus  *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	loginSuccess    prometheus.Counter
	loginFail       prometheus.Counter
	bookings        prometheus.Counter
	bookingFail     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhive_page_renders_total",
			Help: "ページ描画の合計数（ページ別）",
		}, []string{"page"}),
		upstreamStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventhive_upstream_status_total",
			Help: "アップストリームAPIのステータスコード別レスポンス数",
		}, []string{"endpoint", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventhive_upstream_latency_seconds",
			Help:    "アップストリームAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhive_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhive_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhive_bookings_total",
			Help: "予約成功の合計数",
		}),
		bookingFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventhive_booking_fail_total",
			Help: "予約失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.pageRenders,
		c.upstreamStatus,
		c.upstreamLatency,
		c.loginSuccess,
		c.loginFail,
		c.bookings,
		c.bookingFail,
	)

	return c
}

// RecordPageRender はページ描画を記録する。
func (c *Collector) RecordPageRender(page string) {
	c.pageRenders.WithLabelValues(page).Inc()
}

// RecordUpstreamRequest はアップストリームAPI呼び出しの結果を記録する。
// endpointは正規化されたパステンプレート（例: "/event/{id}"）であり、
// 具体的なIDやクエリを含めてはならない（ラベル基数が無制限になるため）。
// statusCode 0 はトランスポート層の失敗を表す。
func (c *Collector) RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration) {
	c.upstreamStatus.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordBookingSuccess は予約成功を記録する。
func (c *Collector) RecordBookingSuccess() {
	c.bookings.Inc()
}

// RecordBookingFailure は予約失敗を記録する。
func (c *Collector) RecordBookingFailure() {
	c.bookingFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
