package middleware_test

import (
	"net/http"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	e := echo.New()
	e.Use(middleware.RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })
	e.GET("/broken", func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError) })

	runRequest(t, e, http.MethodGet, "/ok", "")
	runRequest(t, e, http.MethodGet, "/missing", "")
	runRequest(t, e, http.MethodGet, "/broken", "")

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["route"])
	assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
}

func TestPrometheus_CountsByRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Prometheus())
	e.GET("/orders/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	counter := observability.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204")
	before := testutil.ToFloat64(counter)

	runRequest(t, e, http.MethodGet, "/orders/1", "")
	runRequest(t, e, http.MethodGet, "/orders/2", "")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
