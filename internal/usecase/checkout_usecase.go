package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ShippingQuoter interface {
	Resolve(ctx context.Context, q ShippingQuery) (ShippingQuote, error)
}

type TaxQuoter interface {
	Calculate(ctx context.Context, subtotal decimal.Decimal) (TaxQuote, error)
}

// 送信フォームをカートと照らして検証する。問題はまとめて返す
type CheckoutValidator interface {
	ValidateCheckout(in CheckoutInput, lines []model.CartLine) ValidationResult
}

type CheckoutDeps struct {
	Tx            repo.TransactionManager
	Addresses     repo.AddressRepository
	Users         repo.UserRepository
	Shipping      ShippingQuoter
	Tax           TaxQuoter
	Validator     CheckoutValidator
	Notifications NotificationSink
	Mailer        Mailer
	Events        OrderEventPublisher
	Logger        *zap.Logger

	Now          func() time.Time
	OrderNumbers func(time.Time) string
	PriceEpsilon decimal.Decimal
	StoreURL     string
	Currency     string
}

type CheckoutUsecase struct {
	tx            repo.TransactionManager
	addresses     repo.AddressRepository
	users         repo.UserRepository
	shipping      ShippingQuoter
	tax           TaxQuoter
	validator     CheckoutValidator
	notifications NotificationSink
	mailer        Mailer
	events        OrderEventPublisher
	logger        *zap.Logger

	now          func() time.Time
	orderNumbers func(time.Time) string
	epsilon      decimal.Decimal
	storeURL     string
	currency     string
}

func NewCheckoutUsecase(d CheckoutDeps) *CheckoutUsecase {
	u := &CheckoutUsecase{
		tx:            d.Tx,
		addresses:     d.Addresses,
		users:         d.Users,
		shipping:      d.Shipping,
		tax:           d.Tax,
		validator:     d.Validator,
		notifications: d.Notifications,
		mailer:        d.Mailer,
		events:        d.Events,
		logger:        observability.OrNop(d.Logger),
		now:           d.Now,
		orderNumbers:  d.OrderNumbers,
		epsilon:       d.PriceEpsilon,
		storeURL:      strings.TrimRight(d.StoreURL, "/"),
		currency:      d.Currency,
	}
	if u.now == nil {
		u.now = time.Now
	}
	if u.orderNumbers == nil {
		u.orderNumbers = NewOrderNumber
	}
	if !u.epsilon.IsPositive() {
		u.epsilon = defaultEpsilon
	}
	if u.currency == "" {
		u.currency = "KES"
	}
	return u
}

// ORD-YYYYMMDD-XXXXXX を返す。末尾はULIDのランダム部分
func NewOrderNumber(t time.Time) string {
	id := ulid.Make().String()
	return "ORD-" + t.Format("20060102") + "-" + id[len(id)-6:]
}

const orderNumberAttempts = 5

type resolvedAddress struct {
	address model.Address
	// 注文のトランザクション内で保存する
	save bool
}

type persistedOrder struct {
	order    model.Order
	items    []model.OrderItem
	replayed bool
}

// 在庫の減算が弾かれたら注文のトランザクションを中止する
type stockError struct {
	productID int64
	name      string
}

func (e *stockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.productID)
}

// カートを注文にする。commit前の失敗は何も残さない。
// commit後の失敗はログに出してFailedTasksで返すだけ
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, cart CartStore, in CheckoutInput) (CheckoutResult, error) {
	if userID <= 0 {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	in.CheckoutToken = strings.TrimSpace(in.CheckoutToken)

	// 二重送信ならカートが空でも同じ注文を返す
	if res, ok, err := u.replay(ctx, userID, in.CheckoutToken); err != nil {
		return CheckoutResult{}, u.internal(CheckoutStateValidating, userID, err)
	} else if ok {
		return res, nil
	}

	state := CheckoutStateValidating
	lines, err := cart.Lines(ctx)
	if err != nil {
		return CheckoutResult{}, u.internal(state, userID, fmt.Errorf("load cart: %w", err))
	}
	vr := u.validator.ValidateCheckout(in, lines)
	if len(vr.Errors) > 0 {
		return CheckoutResult{}, u.reject(state, http.StatusUnprocessableEntity, vr.Errors...)
	}
	warnings := vr.Warnings

	state = CheckoutStateAddressResolving
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return CheckoutResult{}, u.internal(state, userID, fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return CheckoutResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addr, err := u.resolveAddress(ctx, user, in)
	if err != nil {
		if _, ok := AsCheckoutFailure(err); ok {
			return CheckoutResult{}, err
		}
		return CheckoutResult{}, u.internal(state, userID, err)
	}

	state = CheckoutStatePricing
	county := NormalizeLocation(in.ShippingCounty)
	if county == "" {
		county = NormalizeLocation(addr.address.County)
	}
	pricing, quote, err := u.price(ctx, userID, lines, county, in)
	if err != nil {
		return CheckoutResult{}, u.internal(state, userID, err)
	}

	state = CheckoutStatePersisting
	p, err := u.persistWithRetry(ctx, user, addr, lines, pricing, quote, in)
	if err != nil {
		var se *stockError
		if errors.As(err, &se) {
			u.logger.Info("checkout rejected: insufficient stock",
				zap.Int64("user_id", userID), zap.Int64("product_id", se.productID))
			return CheckoutResult{}, u.reject(state, http.StatusConflict, CheckoutError{
				Code:    CodeInsufficientStock,
				Field:   "cart",
				Message: fmt.Sprintf("Sorry, %s is no longer available in the requested quantity. Please update your cart.", se.name),
			})
		}
		return CheckoutResult{}, u.internal(state, userID, err)
	}
	if p.replayed {
		return u.replayResult(p.order), nil
	}

	res := CheckoutResult{
		OrderID:     p.order.ID,
		OrderNumber: p.order.OrderNumber,
		Pricing:     pricing,
		Warnings:    warnings,
	}

	res.FailedTasks = u.runPostOrderTasks(ctx, p.order.OrderNumber, u.postOrderTasks(user, p.order, p.items))

	if err := cart.Clear(ctx); err != nil {
		u.logger.Warn("clear cart after checkout",
			zap.Int64("user_id", userID), zap.String("order_number", p.order.OrderNumber), zap.Error(err))
	}

	res.State = CheckoutStateComplete
	observability.RecordCheckout(string(CheckoutStateComplete), "")
	u.logger.Info("order placed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", p.order.ID),
		zap.String("order_number", p.order.OrderNumber),
		zap.String("total", pricing.Total.StringFixed(2)))
	return res, nil
}

func (u *CheckoutUsecase) replay(ctx context.Context, userID int64, token string) (CheckoutResult, bool, error) {
	if token == "" {
		return CheckoutResult{}, false, nil
	}
	var (
		existing model.Order
		found    bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		existing, found, err = r.Orders().FindByIdempotencyKey(ctx, userID, token)
		return err
	})
	if err != nil {
		return CheckoutResult{}, false, fmt.Errorf("find order by checkout token: %w", err)
	}
	if !found {
		return CheckoutResult{}, false, nil
	}
	return u.replayResult(existing), true, nil
}

func (u *CheckoutUsecase) replayResult(o model.Order) CheckoutResult {
	observability.RecordCheckout(string(CheckoutStateComplete), "replayed")
	return CheckoutResult{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		State:       CheckoutStateComplete,
		Pricing:     pricingFromOrder(o),
		Replayed:    true,
	}
}

// 保存済み住所を優先。書き込みの前に持ち主を確認する
func (u *CheckoutUsecase) resolveAddress(ctx context.Context, user *model.User, in CheckoutInput) (resolvedAddress, error) {
	if in.ShippingAddressID > 0 {
		a, err := u.addresses.FindByIDAndUser(ctx, in.ShippingAddressID, user.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return resolvedAddress{}, u.reject(CheckoutStateAddressResolving, http.StatusUnprocessableEntity, CheckoutError{
				Code:    CodeAddressNotFound,
				Field:   "shipping_address_id",
				Message: "The selected shipping address was not found",
			})
		}
		if err != nil {
			return resolvedAddress{}, fmt.Errorf("find saved address: %w", err)
		}
		return resolvedAddress{address: a}, nil
	}

	now := u.now()
	n := in.NewAddress
	return resolvedAddress{
		address: model.Address{
			UserID:     user.ID,
			FullName:   strings.TrimSpace(n.FullName),
			Phone:      firstNonEmpty(n.Phone, user.Phone),
			Email:      firstNonEmpty(n.Email, user.Email),
			Line1:      strings.TrimSpace(n.Line1),
			Line2:      strings.TrimSpace(n.Line2),
			City:       strings.TrimSpace(n.City),
			State:      strings.TrimSpace(n.State),
			PostalCode: strings.TrimSpace(n.PostalCode),
			Country:    firstNonEmpty(n.Country, "Kenya"),
			County:     NormalizeLocation(n.County),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		save: in.SaveNewAddress,
	}, nil
}

// 金額はサーバーのデータで計算し直す。クライアントの金額は比較にだけ使う
func (u *CheckoutUsecase) price(ctx context.Context, userID int64, lines []model.CartLine, county string, in CheckoutInput) (PricingSummary, ShippingQuote, error) {
	subtotal := cartSubtotal(lines)

	quote, err := u.shipping.Resolve(ctx, ShippingQuery{County: county, TownArea: in.ShippingTownArea, Subtotal: subtotal})
	if err != nil {
		return PricingSummary{}, ShippingQuote{}, fmt.Errorf("resolve shipping: %w", err)
	}
	tax, err := u.tax.Calculate(ctx, subtotal)
	if err != nil {
		return PricingSummary{}, ShippingQuote{}, fmt.Errorf("calculate tax: %w", err)
	}

	p := PricingSummary{
		Subtotal:        subtotal,
		ShippingCost:    quote.Cost,
		ShippingZoneID:  quote.ZoneID,
		ShippingMessage: quote.Message,
		FreeShipping:    quote.IsFree,
		TaxEnabled:      tax.Enabled,
		TaxRate:         tax.Rate,
		TaxAmount:       tax.Amount,
		Total:           model.Round2(subtotal.Add(quote.Cost).Add(tax.Amount)),
	}

	if in.ShippingCost != nil && differs(*in.ShippingCost, p.ShippingCost, u.epsilon) {
		u.logger.Warn("client shipping cost differs from server quote",
			zap.Int64("user_id", userID),
			zap.String("client", clientAmount(*in.ShippingCost)),
			zap.String("server", p.ShippingCost.StringFixed(2)),
			zap.String("county", quote.County),
			zap.String("town_area", quote.TownArea))
		observability.RecordPriceMismatch("shipping_cost")
	}
	if in.ShippingZoneID > 0 && (quote.ZoneID == nil || *quote.ZoneID != in.ShippingZoneID) {
		u.logger.Warn("client shipping zone differs from server quote",
			zap.Int64("user_id", userID), zap.Int64("client_zone_id", in.ShippingZoneID))
		observability.RecordPriceMismatch("shipping_zone")
	}
	if in.ClientTotal != nil && differs(*in.ClientTotal, p.Total, u.epsilon) {
		u.logger.Warn("client total differs from server total",
			zap.Int64("user_id", userID),
			zap.String("client", clientAmount(*in.ClientTotal)),
			zap.String("server", p.Total.StringFixed(2)))
		observability.RecordPriceMismatch("total")
	}
	return p, quote, nil
}

// 一意制約違反は注文番号かチェックアウトトークンの競合。
// 2回目は新しい番号を作るか、既存の注文を返す
func (u *CheckoutUsecase) persistWithRetry(ctx context.Context, user *model.User, addr resolvedAddress, lines []model.CartLine, p PricingSummary, q ShippingQuote, in CheckoutInput) (persistedOrder, error) {
	out, err := u.persist(ctx, user, addr, lines, p, q, in)
	if errors.Is(err, repo.ErrDuplicate) {
		u.logger.Info("order insert hit a unique constraint, retrying", zap.Int64("user_id", user.ID))
		out, err = u.persist(ctx, user, addr, lines, p, q, in)
	}
	return out, err
}

func (u *CheckoutUsecase) persist(ctx context.Context, user *model.User, addr resolvedAddress, lines []model.CartLine, p PricingSummary, q ShippingQuote, in CheckoutInput) (persistedOrder, error) {
	var out persistedOrder

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		out = persistedOrder{}

		if in.CheckoutToken != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, user.ID, in.CheckoutToken)
			if err != nil {
				return fmt.Errorf("find order by checkout token: %w", err)
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return fmt.Errorf("list order items: %w", err)
				}
				out = persistedOrder{order: existing, items: items, replayed: true}
				return nil
			}
		}

		a := addr.address
		var addressID *int64
		if addr.save {
			saved, err := r.Addresses().Create(ctx, a)
			if err != nil {
				return fmt.Errorf("save shipping address: %w", err)
			}
			a = saved
		}
		if a.ID > 0 {
			id := a.ID
			addressID = &id
		}

		number, err := u.uniqueOrderNumber(ctx, r.Orders())
		if err != nil {
			return err
		}

		display := a.DisplayString()
		now := u.now()
		order := model.Order{
			OrderNumber:       number,
			UserID:            user.ID,
			ShippingAddressID: addressID,
			ShippingAddress:   display,
			BillingAddress:    display,
			CustomerName:      firstNonEmpty(a.FullName, user.Name),
			CustomerEmail:     firstNonEmpty(a.Email, user.Email),
			CustomerPhone:     firstNonEmpty(a.Phone, user.Phone),
			ShippingCounty:    q.County,
			ShippingTownArea:  q.TownArea,
			ShippingZoneID:    q.ZoneID,
			ShippingCost:      p.ShippingCost,
			ShippingMessage:   p.ShippingMessage,
			Subtotal:          p.Subtotal,
			TaxEnabled:        p.TaxEnabled,
			TaxRate:           p.TaxRate,
			TaxAmount:         p.TaxAmount,
			TotalAmount:       p.Total,
			Status:            model.OrderStatusPending,
			PaymentMethod:     model.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod))),
			PaymentStatus:     model.PaymentStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if in.CheckoutToken != "" {
			key := in.CheckoutToken
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			item, err := persistLine(ctx, r, order.ID, l, now)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		out = persistedOrder{order: order, items: items}
		return nil
	})
	if err != nil {
		return persistedOrder{}, err
	}
	return out, nil
}

// 商品のスナップショットを取り、在庫を減らす。
// 同時のチェックアウトに在庫を取られたらstockErrorになる
func persistLine(ctx context.Context, r repo.TxRepos, orderID int64, l model.CartLine, now time.Time) (model.OrderItem, error) {
	p, err := r.Products().FindByID(ctx, l.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.OrderItem{}, &stockError{productID: l.ProductID, name: fmt.Sprintf("product #%d", l.ProductID)}
	}
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("load product %d: %w", l.ProductID, err)
	}
	if !p.IsActive {
		return model.OrderItem{}, &stockError{productID: p.ID, name: p.Name}
	}

	sku := p.SKU
	if l.VariantID != nil {
		v, err := r.Products().FindVariant(ctx, p.ID, *l.VariantID)
		if errors.Is(err, repo.ErrNotFound) {
			return model.OrderItem{}, &stockError{productID: p.ID, name: p.Name}
		}
		if err != nil {
			return model.OrderItem{}, fmt.Errorf("load variant %d: %w", *l.VariantID, err)
		}
		if v.SKU != "" {
			sku = v.SKU
		}
	}

	ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, l.VariantID, l.Quantity)
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("decrease stock for product %d: %w", p.ID, err)
	}
	if !ok {
		return model.OrderItem{}, &stockError{productID: p.ID, name: p.Name}
	}

	item := model.OrderItem{
		OrderID:     orderID,
		ProductID:   p.ID,
		VariantID:   l.VariantID,
		ProductName: p.Name,
		SKU:         sku,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		LineTotal:   model.Round2(l.LineTotal()),
		Size:        l.Size,
		Color:       l.Color,
		Material:    l.Material,
		CreatedAt:   now,
	}
	if err := r.OrderItems().Create(ctx, &item); err != nil {
		return model.OrderItem{}, fmt.Errorf("create order item: %w", err)
	}
	return item, nil
}

func (u *CheckoutUsecase) uniqueOrderNumber(ctx context.Context, orders repo.OrderRepository) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		n := u.orderNumbers(u.now())
		exists, err := orders.OrderNumberExists(ctx, n)
		if err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !exists {
			return n, nil
		}
	}
	return "", fmt.Errorf("no free order number after %d attempts", orderNumberAttempts)
}

func (u *CheckoutUsecase) reject(state CheckoutState, status int, errs ...CheckoutError) error {
	for _, e := range errs {
		observability.RecordCheckout(string(state), string(e.Code))
	}
	return &CheckoutFailure{State: state, Status: status, Errors: errs}
}

// 原因はログに出し、利用者には共通のメッセージだけ返す
func (u *CheckoutUsecase) internal(state CheckoutState, userID int64, cause error) error {
	u.logger.Error("order creation failed",
		zap.String("state", string(state)), zap.Int64("user_id", userID), zap.Error(cause))
	return u.reject(state, http.StatusInternalServerError, CheckoutError{
		Code:    CodeOrderCreationFailed,
		Message: msgOrderCreationFailed,
	})
}

type CheckoutSummary struct {
	State         CheckoutState    `json:"state"`
	Items         []model.CartLine `json:"items"`
	ItemCount     int64            `json:"item_count"`
	Addresses     []model.Address  `json:"addresses"`
	Shipping      ShippingQuote    `json:"shipping"`
	Tax           TaxQuote         `json:"tax"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Total         decimal.Decimal  `json:"total"`
	CheckoutToken string           `json:"checkout_token"`
}

// 送信前のチェックアウト画面の内容。送料はデフォルト住所のcountyで見積もる
func (u *CheckoutUsecase) Summary(ctx context.Context, userID int64, cart CartStore) (CheckoutSummary, error) {
	if userID <= 0 {
		return CheckoutSummary{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	lines, err := cart.Lines(ctx)
	if err != nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	addrs, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	county := ""
	for _, a := range addrs {
		if a.IsDefault {
			county = a.County
			break
		}
	}

	subtotal := cartSubtotal(lines)
	quote, err := u.shipping.Resolve(ctx, ShippingQuery{County: county, Subtotal: subtotal})
	if err != nil {
		u.logger.Error("resolve shipping for summary", zap.Int64("user_id", userID), zap.Error(err))
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	tax, err := u.tax.Calculate(ctx, subtotal)
	if err != nil {
		u.logger.Error("calculate tax for summary", zap.Int64("user_id", userID), zap.Error(err))
		return CheckoutSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var count int64
	for _, l := range lines {
		count += l.Quantity
	}
	return CheckoutSummary{
		State:         CheckoutStateDraft,
		Items:         lines,
		ItemCount:     count,
		Addresses:     addrs,
		Shipping:      quote,
		Tax:           tax,
		Subtotal:      subtotal,
		Total:         model.Round2(subtotal.Add(quote.Cost).Add(tax.Amount)),
		CheckoutToken: uuid.NewString(),
	}, nil
}

func cartSubtotal(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return model.Round2(sum)
}

func pricingFromOrder(o model.Order) PricingSummary {
	return PricingSummary{
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		ShippingZoneID:  o.ShippingZoneID,
		ShippingMessage: o.ShippingMessage,
		FreeShipping:    o.ShippingCost.IsZero(),
		TaxEnabled:      o.TaxEnabled,
		TaxRate:         o.TaxRate,
		TaxAmount:       o.TaxAmount,
		Total:           o.TotalAmount,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
