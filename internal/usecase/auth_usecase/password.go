package auth

import (
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 12

// 長さが足りていても拒否する
var weakPasswords = map[string]struct{}{
	"password1234": {},
	"123456789012": {},
	"qwertyuiop12": {},
	"letmein12345": {},
	"admin1234567": {},
	"linenstore12": {},
	"karibu123456": {},
}

// emailを小文字にして、パスワードのルールを確認する
func normalizeCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); email == "" || err != nil || addr.Address != email {
		return "", ErrInvalidEmailFormat
	}
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if _, weak := weakPasswords[strings.ToLower(strings.TrimSpace(password))]; weak {
		return "", ErrWeakPassword
	}
	return email, nil
}

// 登録時にハッシュ化し、ログイン時に照合する
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	return string(h), err
}

func (b *Bcrypt) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
