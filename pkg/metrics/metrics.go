package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	namespace    string
	httpReqCnt   *prometheus.CounterVec
	httpDur      *prometheus.HistogramVec
	connGauge    prometheus.Gauge
	roomGauge    prometheus.Gauge
	opCnt        *prometheus.CounterVec
	broadcastCnt *prometheus.CounterVec
	authFailCnt  prometheus.Counter
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	r.MustRegister(httpReqCnt, httpDur)

	connGauge := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "active_connections"})
	roomGauge := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "active_rooms"})
	opCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "operations_total"}, []string{"type", "status"})
	broadcastCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "broadcasts_total"}, []string{"event"})
	authFailCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "auth_failures_total"})
	r.MustRegister(connGauge, roomGauge, opCnt, broadcastCnt, authFailCnt)

	return &Metrics{
		registry:     r,
		namespace:    ns,
		httpReqCnt:   httpReqCnt,
		httpDur:      httpDur,
		connGauge:    connGauge,
		roomGauge:    roomGauge,
		opCnt:        opCnt,
		broadcastCnt: broadcastCnt,
		authFailCnt:  authFailCnt,
	}
}

func (m *Metrics) ConnOpened()  { m.connGauge.Inc() }
func (m *Metrics) ConnClosed()  { m.connGauge.Dec() }
func (m *Metrics) AuthFailure() { m.authFailCnt.Inc() }

func (m *Metrics) SetRooms(n int) { m.roomGauge.Set(float64(n)) }

func (m *Metrics) Operation(opType, status string) {
	m.opCnt.WithLabelValues(opType, status).Inc()
}

func (m *Metrics) Broadcast(event string) {
	m.broadcastCnt.WithLabelValues(event).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
