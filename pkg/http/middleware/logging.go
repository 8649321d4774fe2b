package middleware

import (
	"time"

	"DeBrief/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per HTTP request. Scrape and probe routes log at debug.
func RequestLogging(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("route", routeLabel(c)),
				logger.Int("status", c.Response().Status),
				logger.Duration("latency", time.Since(start)),
				logger.String("remote", c.RealIP()),
			}
			switch path := c.Path(); {
			case path == "/metrics" || path == "/healthz":
				l.Debug("http request", fields...)
			case c.Response().Status >= 500:
				l.Error("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
