package handler

import (
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return c.JSON(s.status, ErrorResponse{Error: s.err.Error()})
		}
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

var sentinelStatus = []struct {
	err    error
	status int
}{
	{usecase.ErrValidation, http.StatusBadRequest},
	{usecase.ErrUnauthorized, http.StatusUnauthorized},
	{usecase.ErrForbidden, http.StatusForbidden},
	{usecase.ErrNotFound, http.StatusNotFound},
	{usecase.ErrConflict, http.StatusConflict},
}

// middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}

	return id, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var textPolicy = bluemonday.StrictPolicy()

// 自由入力のタグを除去してtrimする。
// Sanitizeはエンティティをエスケープするが、表示ではなく保存する値なので戻す
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
