// Package metrics provides Prometheus metrics for ADBExplorer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. It implements adb.Observer and
// repository.TransferObserver.
type Metrics struct {
	gatherer prometheus.Gatherer

	adbCommandsTotal    *prometheus.CounterVec
	adbCommandDuration  *prometheus.HistogramVec
	transfersTotal      *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	sseConnections      prometheus.Gauge
}

// New registers the collectors with reg
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,

		adbCommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbexplorer_adb_commands_total",
				Help: "Total adb invocations by command and exit code",
			},
			[]string{"command", "exit_code"},
		),
		adbCommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adbexplorer_adb_command_duration_seconds",
				Help:    "adb invocation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbexplorer_transfers_total",
				Help: "Total pulls and pushes by direction and status",
			},
			[]string{"direction", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbexplorer_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adbexplorer_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		sseConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "adbexplorer_sse_connections_active",
				Help: "Number of active SSE connections",
			},
		),
	}
}

// ObserveCommand records one adb invocation
func (m *Metrics) ObserveCommand(command string, exitCode int, duration time.Duration) {
	m.adbCommandsTotal.WithLabelValues(command, strconv.Itoa(exitCode)).Inc()
	m.adbCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveTransfer records a finished pull or push
func (m *Metrics) ObserveTransfer(direction string, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.transfersTotal.WithLabelValues(direction, status).Inc()
}

// SSEConnected tracks an open event stream; call the returned func on close
func (m *Metrics) SSEConnected() func() {
	m.sseConnections.Inc()
	return m.sseConnections.Dec
}

// Middleware records every HTTP request by route pattern
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
