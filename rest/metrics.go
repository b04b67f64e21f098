package rest

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	evoting "github.com/jicksta/evoting-mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type serverMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newServerMetrics(reg prometheus.Registerer, store evoting.ElectionStore) *serverMetrics {
	promautoFactory := promauto.With(reg)
	m := &serverMetrics{}
	m.requests = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "evoting_http_requests_total",
		Help: "number of HTTP requests served",
	}, []string{"method", "route", "status"})
	m.latency = promautoFactory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evoting_http_request_duration_seconds",
		Help:    "time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Record counts are read at scrape time
	records := []struct {
		name, help string
		count      func(evoting.StoreCounts) int
	}{
		{"evoting_elections", "number of registered elections", func(c evoting.StoreCounts) int { return c.Elections }},
		{"evoting_candidates", "number of registered candidates", func(c evoting.StoreCounts) int { return c.Candidates }},
		{"evoting_voters", "number of eligible voters", func(c evoting.StoreCounts) int { return c.Voters }},
		{"evoting_disputes", "number of filed disputes", func(c evoting.StoreCounts) int { return c.Disputes }},
	}
	for _, record := range records {
		count := record.count
		promautoFactory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: record.name,
			Help: record.help,
		}, func() float64 {
			return float64(count(store.Counts()))
		})
	}
	return m
}

func (m *serverMetrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
