package middleware

import (
	"fmt"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/common"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/metrics"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger       *logrus.Logger
	worker       metrics.Worker
	uuidProvider func() uuid.UUID
}

type MetricsOpts struct {
	UuidProvider func() uuid.UUID
}

func NewMetricsMiddleware(logger *logrus.Logger, worker metrics.Worker, opts *MetricsOpts) Middleware {
	uuidProvider := uuid.New
	if opts != nil && opts.UuidProvider != nil {
		uuidProvider = opts.UuidProvider
	}
	return &metricsMiddleware{
		logger:       logger,
		worker:       worker,
		uuidProvider: uuidProvider,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		requestID := c.Get(common.RequestIDHeader)
		if requestID == "" {
			requestID = m.uuidProvider().String()
		}
		c.Locals(common.RequestIDKey, requestID)
		c.Set(common.RequestIDHeader, requestID)

		err := c.Next()

		method := c.Method()
		route := c.Route().Path
		statusCode := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				statusCode = fe.Code
			}
		}
		elapsed := time.Since(startTime)

		m.worker.Submit("http_metrics", func() {
			m.record(method, route, statusCode)
		})
		m.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"route":      route,
			"status":     statusCode,
			"latency_ms": elapsed.Milliseconds(),
		}).Debug("request served")

		return err
	}
}

func (m *metricsMiddleware) record(method, route string, statusCode int) {
	if !prometheus.Config.EnableHTTP {
		return
	}
	prometheus.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(statusCode)).Inc()
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", code/100)
}
