package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	msgProductNotFound = "Product not found"
	msgOutOfStock      = "This item is out of stock"
)

// /cart のusecase。変更のたびに数量を在庫と照合するが、
// 在庫そのものを動かすのはチェックアウト時だけ
type CartUsecase struct {
	cartRepo    repo.CartRepository
	lineRepo    repo.CartLineRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	lineRepo repo.CartLineRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		lineRepo:    lineRepo,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	VariantID *int64          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Material  string          `json:"material,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	ItemCount int64              `json:"item_count"`
}

// 価格は受け取らない。サーバー側の価格を使う
type AddCartInput struct {
	ProductID int64
	VariantID *int64
	Quantity  int64
	Size      string
	Color     string
	Material  string
}

type UpdateCartItemInput struct {
	Quantity int64
}

// チェックアウト用にユーザーのカートをCartStoreとして返す
func (u *CartUsecase) StoreFor(ctx context.Context, userID int64) (CartStore, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &repoCartStore{cartID: cart.ID, carts: u.cartRepo, lines: u.lineRepo}, nil
}

func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 同一キーの明細があれば数量加算、無ければ作成
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}

	variant, err := u.resolveVariant(ctx, p, in)
	if err != nil {
		return CartResponse{}, err
	}

	available := p.Stock
	line := model.CartLine{
		ProductID: p.ID,
		Quantity:  in.Quantity,
		UnitPrice: p.UnitPrice(variant),
		Size:      strings.TrimSpace(in.Size),
		Color:     strings.TrimSpace(in.Color),
		Material:  strings.TrimSpace(in.Material),
	}
	if variant != nil {
		available = variant.Stock
		line.VariantID = &variant.ID
		line.Size = variant.Size
		line.Color = variant.Color
		line.Material = variant.Material
	}
	if available <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusConflict, msgOutOfStock)
	}
	line.LineKey = model.LineKey(p.ID, line.VariantID, line.Size, line.Color, line.Material)

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 加算と上限チェックは同じ行ロックの中で行う
	if _, err := u.lineRepo.UpsertLine(ctx, cart.ID, line, available); err != nil {
		if errors.Is(err, repo.ErrStockLimit) {
			return CartResponse{}, NewHTTPError(http.StatusConflict, stockLimitMessage(available))
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// バリアントIDを優先し、無ければ指定属性がすべて一致するバリアント。
// nilなら商品単位の在庫
func (u *CartUsecase) resolveVariant(ctx context.Context, p model.Product, in AddCartInput) (*model.ProductVariant, error) {
	if in.VariantID != nil && *in.VariantID > 0 {
		v, err := u.productRepo.FindVariant(ctx, p.ID, *in.VariantID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !v.IsActive {
			return nil, NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		return &v, nil
	}

	if strings.TrimSpace(in.Size+in.Color+in.Material) == "" {
		return nil, nil
	}

	variants, err := u.productRepo.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for i := range variants {
		if variants[i].Matches(in.Size, in.Color, in.Material) {
			return &variants[i], nil
		}
	}
	return nil, nil
}

func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, lineID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.lineRepo.IsOwnedByUser(ctx, lineID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	line, err := u.lineRepo.FindByID(ctx, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	available, err := u.availableFor(ctx, line)
	if err != nil {
		return CartResponse{}, err
	}
	if in.Quantity > available {
		return CartResponse{}, NewHTTPError(http.StatusConflict, stockLimitMessage(available))
	}

	if err := u.lineRepo.UpdateQuantity(ctx, lineID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, line.CartID)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, lineID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.lineRepo.IsOwnedByUser(ctx, lineID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.lineRepo.DeleteByID(ctx, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) availableFor(ctx context.Context, line model.CartLine) (int64, error) {
	p, err := u.productRepo.FindByID(ctx, line.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return 0, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}
	if line.VariantID == nil {
		return p.Stock, nil
	}

	v, err := u.productRepo.FindVariant(ctx, line.ProductID, *line.VariantID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, NewHTTPError(http.StatusNotFound, msgProductNotFound)
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return v.Stock, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	lines, err := u.lineRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(lines)), Subtotal: cartSubtotal(lines)}
	names := map[int64]string{}

	// 商品が消えていても行は残す。小計はチェックアウトと同じ全行の合計
	for _, l := range lines {
		name, ok := names[l.ProductID]
		if !ok {
			p, err := u.productRepo.FindByID(ctx, l.ProductID)
			switch {
			case errors.Is(err, repo.ErrNotFound):
			case err != nil:
				return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
			default:
				name = p.Name
			}
			names[l.ProductID] = name
		}

		total := l.LineTotal()
		out.Items = append(out.Items, CartItemResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Material:  l.Material,
			LineTotal: total,
		})
		out.ItemCount += l.Quantity
	}
	return out, nil
}

func stockLimitMessage(available int64) string {
	return fmt.Sprintf("Only %d available in stock", available)
}
