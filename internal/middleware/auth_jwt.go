package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

var errTokenExpired = errors.New("token expired")

// auth.JWTIssuerが署名するclaims。subが数値なので
// jwt.RegisteredClaims（subjectが文字列）は使えない
type accessClaims struct {
	Sub  int64  `json:"sub"`
	Role string `json:"role"`
	TV   *int   `json:"tv"`
	Exp  int64  `json:"exp"`
}

func (c accessClaims) Valid() error {
	if c.Exp == 0 || time.Now().Unix() >= c.Exp {
		return errTokenExpired
	}
	return nil
}

func (c accessClaims) usable() bool {
	return c.Sub > 0 && c.Role != "" && c.TV != nil && *c.TV >= 0
}

// bearerAuth用のJWT検証ミドルウェア。HS256を検証してclaimsをcontextへ保存
func AuthJWT(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			var claims accessClaims
			token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid || !claims.usable() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.Sub)
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, *claims.TV)
			return next(c)
		}
	}
}

// Bearer形式か確認してtokenを抜く（大文字小文字は区別しない）
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
