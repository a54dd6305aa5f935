package middleware

import (
	"strconv"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"

	"github.com/labstack/echo/v4"
)

// ルートのテンプレートごとにリクエスト数とレイテンシを数える
func Prometheus() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// 実際のステータスを記録するため、先にechoにレスポンスを書かせる
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			observability.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
			observability.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
