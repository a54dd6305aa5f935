package usecase

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
)

// チェックアウトに渡すユーザーごとのカート
type CartStore interface {
	Lines(ctx context.Context) ([]model.CartLine, error)
	// 注文ができたらカートを空にする
	Clear(ctx context.Context) error
}

type repoCartStore struct {
	cartID int64
	carts  repo.CartRepository
	lines  repo.CartLineRepository
}

func (s *repoCartStore) Lines(ctx context.Context) ([]model.CartLine, error) {
	return s.lines.ListByCartID(ctx, s.cartID)
}

// カートを終了させる。次の追加で新しいACTIVEカートができる
func (s *repoCartStore) Clear(ctx context.Context) error {
	if err := s.carts.Clear(ctx, s.cartID); err != nil {
		return err
	}
	return s.carts.UpdateStatus(ctx, s.cartID, model.CartStatusCheckedOut)
}
