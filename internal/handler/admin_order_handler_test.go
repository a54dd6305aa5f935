package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOrderHandler_List_RejectsBadQuery(t *testing.T) {
	e := echo.New()
	// 不正なクエリはusecaseまで届かない
	handler.NewAdminOrderHandler(nil).RegisterRoutes(e.Group("/admin"))

	cases := map[string]string{
		"page=two":               "invalid page",
		"limit=ten":              "invalid limit",
		"user_id=abc":            "invalid user_id",
		"from=2026-10-01":        "invalid from",
		"to=yesterday&page=1":    "invalid to",
		"from=2026-10-01T00:00Z": "invalid from",
	}

	for query, want := range cases {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/orders?"+query, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, want, body.Error)
		})
	}
}
