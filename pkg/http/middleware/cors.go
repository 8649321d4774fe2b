package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

func (cfg CORSConfig) allowed(origin string) (string, bool) {
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			return "*", true
		}
		if origin != "" && o == origin {
			return origin, true
		}
	}
	return "", false
}

// CORS answers preflight requests and decorates responses for allowed
// origins. Requests from other origins pass through without CORS headers.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			allowOrigin, ok := cfg.allowed(c.Request().Header.Get(echo.HeaderOrigin))
			if !ok {
				return next(c)
			}
			h.Set(echo.HeaderAccessControlAllowOrigin, allowOrigin)

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			if methods != "" {
				h.Set(echo.HeaderAccessControlAllowMethods, methods)
			}
			if headers != "" {
				h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			}
			if cfg.MaxAge > 0 {
				h.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
