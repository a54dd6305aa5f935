package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
)

type AddressDTO struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Line1      string  `json:"address_line1"`
	Line2      string  `json:"address_line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	County     string  `json:"county"`
	IsDefault  bool    `json:"is_default"`
	Display    string  `json:"display"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  *string `json:"updated_at,omitempty"`
}

// 作成と更新の両方で使う
type AddressRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	County     string `json:"county"`
}

func (r AddressRequest) valid() bool {
	return strings.TrimSpace(r.FullName) != "" &&
		strings.TrimSpace(r.Line1) != "" &&
		(strings.TrimSpace(r.City) != "" || strings.TrimSpace(r.County) != "")
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

// 住所を保存する。最初の住所はデフォルトになる
func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressRequest) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, ErrUnauthorized
	}
	if !req.valid() {
		return AddressDTO{}, ErrValidation
	}

	existing, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return AddressDTO{}, ErrInternal
	}

	now := time.Now()
	a := applyAddressRequest(model.Address{UserID: userID, CreatedAt: now}, req)
	a.UpdatedAt = now
	a.IsDefault = len(existing) == 0

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, ErrInternal
	}

	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressRequest) error {
	if err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}
	if !req.valid() {
		return ErrValidation
	}

	a := applyAddressRequest(model.Address{ID: addressID, UserID: userID}, req)
	a.UpdatedAt = time.Now()

	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		// まだ参照されている
		return ErrConflict
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if err := u.checkOwner(ctx, userID, addressID); err != nil {
		return err
	}

	// デフォルトはユーザーごとに1件
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

func (u *AddressUsecase) checkOwner(ctx context.Context, userID, addressID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return ErrValidation
	}
	owned, err := u.addresses.IsOwnedByUser(ctx, addressID, userID)
	if err != nil {
		return ErrInternal
	}
	if !owned {
		return ErrForbidden
	}
	return nil
}

func applyAddressRequest(a model.Address, req AddressRequest) model.Address {
	a.FullName = strings.TrimSpace(req.FullName)
	a.Phone = strings.TrimSpace(req.Phone)
	a.Email = strings.TrimSpace(req.Email)
	a.Line1 = strings.TrimSpace(req.Line1)
	a.Line2 = strings.TrimSpace(req.Line2)
	a.City = strings.TrimSpace(req.City)
	a.State = strings.TrimSpace(req.State)
	a.PostalCode = strings.TrimSpace(req.PostalCode)
	a.Country = firstNonEmpty(req.Country, "Kenya")
	a.County = NormalizeLocation(req.County)
	return a
}

func toAddressDTO(a *model.Address) AddressDTO {
	dto := AddressDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Email:      a.Email,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		County:     a.County,
		IsDefault:  a.IsDefault,
		Display:    a.DisplayString(),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	t := a.UpdatedAt.Format(time.RFC3339)
	dto.UpdatedAt = &t
	return dto
}
