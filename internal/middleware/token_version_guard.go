package middleware

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionの一致するか確認。無効化・削除されたユーザーも拒否。
// AuthJWTの後に置くこと
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sessionCurrent(c, users) {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

func sessionCurrent(c echo.Context, users repository.UserRepository) bool {
	userID, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return false
	}
	tv, ok := c.Get(CtxTokenVersionKey).(int)
	if !ok {
		return false
	}

	user, err := users.FindByID(c.Request().Context(), userID)
	return err == nil && user != nil && user.IsActive && user.TokenVersion == tv
}
