package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

type MockUserRepoForMiddleware struct {
	mock.Mock
}

func (m *MockUserRepoForMiddleware) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepoForMiddleware) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepoForMiddleware) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.UserRepository = (*MockUserRepoForMiddleware)(nil)

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, tv int, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}

	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func okHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, TokenVersion: tv})
}

// =====================
// AuthJWT
// =====================

func TestMiddleware_AuthJWT_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"empty bearer", "Bearer   "},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "USER", 0, jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS512)},
		{"missing role", "Bearer " + mustMakeJWT(t, testSecret, 1, "", 0, jwt.SigningMethodHS256)},
		{"zero sub", "Bearer " + mustMakeJWT(t, testSecret, 0, "USER", 0, jwt.SigningMethodHS256)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", okHandler, middleware.AuthJWT(testSecret))

			rec := runRequest(t, e, http.MethodGet, "/protected", tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", okHandler, middleware.AuthJWT(testSecret))

	raw := mustMakeJWT(t, testSecret, 123, "USER", 7, jwt.SigningMethodHS256)
	rec := runRequest(t, e, http.MethodGet, "/protected", "bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	assert.Equal(t, int64(123), body.UserID)
	assert.Equal(t, "USER", body.Role)
	assert.Equal(t, 7, body.TokenVersion)
}

// =====================
// TokenVersionGuard
// =====================

func TestMiddleware_TokenVersionGuard_Unauthorized_MissingContext(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	e.GET("/protected", okHandler, middleware.TokenVersionGuard(userRepo))

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMiddleware_TokenVersionGuard(t *testing.T) {
	cases := []struct {
		name string
		user *model.User
		want int
	}{
		{"version matches", &model.User{ID: 1, Role: model.RoleUser, TokenVersion: 5, IsActive: true}, http.StatusOK},
		{"forced logout bumped version", &model.User{ID: 1, Role: model.RoleUser, TokenVersion: 6, IsActive: true}, http.StatusUnauthorized},
		{"deactivated user", &model.User{ID: 1, Role: model.RoleUser, TokenVersion: 5, IsActive: false}, http.StatusUnauthorized},
		{"deleted user", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			userRepo := new(MockUserRepoForMiddleware)
			userRepo.On("FindByID", mock.Anything, int64(1)).Return(tc.user, nil).Once()

			e.GET("/protected", okHandler, middleware.AuthJWT(testSecret), middleware.TokenVersionGuard(userRepo))

			raw := mustMakeJWT(t, testSecret, 1, "USER", 5, jwt.SigningMethodHS256)
			rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+raw)
			assert.Equal(t, tc.want, rec.Code)
			userRepo.AssertExpectations(t)
		})
	}
}

// =====================
// AdminRoleGuard
// =====================

func TestMiddleware_AdminRoleGuard(t *testing.T) {
	e := echo.New()
	e.GET("/admin", okHandler, middleware.AuthJWT(testSecret), middleware.AdminRoleGuard())

	user := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+mustMakeJWT(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusForbidden, user.Code)
	assert.Equal(t, "admin only", decodeMWError(t, user).Error)

	admin := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+mustMakeJWT(t, testSecret, 2, "ADMIN", 0, jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, admin.Code)

	bare := echo.New()
	bare.GET("/admin", okHandler, middleware.AdminRoleGuard())
	assert.Equal(t, http.StatusUnauthorized, runRequest(t, bare, http.MethodGet, "/admin", "").Code)
}
