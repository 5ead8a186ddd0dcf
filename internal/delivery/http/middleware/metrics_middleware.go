package middleware

import (
	"net/http"
	"time"

	"farmchain/internal/infra/metrics"

	"github.com/labstack/echo/v4"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct {
	recorder metrics.Recorder
}

func NewMetricsMiddleware(recorder metrics.Recorder) *MetricsMiddleware {
	return &MetricsMiddleware{recorder: recorder}
}

// Handle renders any error first so the recorded status is the one sent.
// Unmatched paths share one label value.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" || c.Response().Status == http.StatusNotFound {
			route = unmatchedRoute
		}
		m.recorder.RecordRequest(c.Request().Method, route, c.Response().Status, time.Since(start))

		return nil
	}
}
