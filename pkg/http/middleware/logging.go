package middleware

import (
	"time"

	"FinLiquidity/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request: 5xx at warn, the rest at debug.
// Paths in skip (e.g. /metrics) are not logged.
func RequestLogging(l *logger.Logger, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if _, ok := skipped[c.Path()]; ok {
				return err
			}

			status := c.Response().Status
			fields := []logger.Field{
				logger.String("request_id", GetRequestID(c)),
				logger.String("method", c.Request().Method),
				logger.String("route", c.Path()),
				logger.String("uri", c.Request().RequestURI),
				logger.String("remote", c.RealIP()),
				logger.Int("status", status),
				logger.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, logger.Error(err))
			}
			if status >= 500 {
				l.Warn("http request failed", fields...)
				return err
			}
			l.Debug("http request", fields...)
			return err
		}
	}
}
