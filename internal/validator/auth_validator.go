package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	auth "github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase/auth_usecase"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailAlreadyUsed = errors.New("email already used")
)

var emailLike = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

func NewAuthValidator(users repository.UserRepository) auth.InputValidator {
	return &authValidator{users: users}
}

// 登録とログインで共通の形式チェック。パスワードのルールはusecase側
func shapeOK(email, password string) bool {
	return password != "" && emailLike.MatchString(email)
}

func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !shapeOK(email, password) {
		return ErrInvalidInput
	}
	// 取得エラーはusecaseに任せる（usecaseでも同じ確認をする）
	if u, err := v.users.FindByEmail(ctx, email); err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}
	return nil
}

func (v *authValidator) ValidateLogin(_ context.Context, email string, password string) error {
	if !shapeOK(strings.TrimSpace(email), password) {
		return ErrInvalidInput
	}
	return nil
}
