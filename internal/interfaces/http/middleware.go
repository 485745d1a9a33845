package httpinterface

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "escrowd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "escrowd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route and method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if len(route) <= 0 {
			route = "unmatched"
		}
		method := c.Request.Method
		requestsTotal.WithLabelValues(
			route, method, strconv.Itoa(c.Writer.Status()),
		).Inc()
		requestDuration.WithLabelValues(route, method).Observe(
			time.Since(start).Seconds(),
		)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Debug("request failed")
			return
		}
		entry.Debug("request served")
	}
}
