package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// in-memory store（gorm版と同じくエラーでrollbackする）
// =====================

type memStore struct {
	products  map[int64]model.Product
	variants  map[int64]model.ProductVariant
	orders    []model.Order
	items     []model.OrderItem
	addresses []model.Address
	nextID    int64

	// 失敗の注入
	itemCreateErr   error
	itemFailAt      int // 何回目のCreateで失敗させるか（1始まり、0なら毎回）
	itemCreates     int
	orderCreateErrs []error // Createごとに1つ消費
	takenNumbers    map[string]bool

	txCalls int
}

func newMemStore() *memStore {
	return &memStore{
		products:     map[int64]model.Product{},
		variants:     map[int64]model.ProductVariant{},
		takenNumbers: map[string]bool{},
		nextID:       100,
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	products  map[int64]model.Product
	variants  map[int64]model.ProductVariant
	orders    []model.Order
	items     []model.OrderItem
	addresses []model.Address
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products:  make(map[int64]model.Product, len(s.products)),
		variants:  make(map[int64]model.ProductVariant, len(s.variants)),
		orders:    append([]model.Order(nil), s.orders...),
		items:     append([]model.OrderItem(nil), s.items...),
		addresses: append([]model.Address(nil), s.addresses...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.variants {
		snap.variants[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.variants = snap.variants
	s.orders = snap.orders
	s.items = snap.items
	s.addresses = snap.addresses
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txCalls++
	snap := s.snapshot()
	if err := fn(memTxRepos{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Orders() repo.OrderRepository         { return memOrders{r.s} }
func (r memTxRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.s} }
func (r memTxRepos) Inventory() repo.InventoryRepository  { return memInventory{r.s} }
func (r memTxRepos) Products() repo.ProductRepository     { return memProducts{r.s} }
func (r memTxRepos) Addresses() repo.AddressRepository    { return memAddresses{r.s} }

func (s *memStore) addProduct(p model.Product) model.Product {
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addVariant(v model.ProductVariant) model.ProductVariant {
	if v.ID == 0 {
		v.ID = s.id()
	}
	s.variants[v.ID] = v
	return v
}

func (s *memStore) addAddress(a model.Address) model.Address {
	if a.ID == 0 {
		a.ID = s.id()
	}
	s.addresses = append(s.addresses, a)
	return a
}

// ---- orders

type memOrders struct{ s *memStore }

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	for _, o := range r.s.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r memOrders) Create(ctx context.Context, order *model.Order) error {
	if len(r.s.orderCreateErrs) > 0 {
		err := r.s.orderCreateErrs[0]
		r.s.orderCreateErrs = r.s.orderCreateErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return repo.ErrDuplicate
		}
		if o.IdempotencyKey != nil && order.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
			return repo.ErrDuplicate
		}
	}
	order.ID = r.s.id()
	r.s.orders = append(r.s.orders, *order)
	return nil
}

func (r memOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	for i := range r.s.orders {
		if r.s.orders[i].ID == orderID {
			r.s.orders[i].Status = status
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memOrders) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	if r.s.takenNumbers[orderNumber] {
		return true, nil
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	for _, o := range r.s.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	return r.s.orders, int64(len(r.s.orders)), nil
}

// ---- order items

type memOrderItems struct{ s *memStore }

func (r memOrderItems) Create(ctx context.Context, item *model.OrderItem) error {
	r.s.itemCreates++
	if r.s.itemCreateErr != nil && (r.s.itemFailAt == 0 || r.s.itemFailAt == r.s.itemCreates) {
		return r.s.itemCreateErr
	}
	item.ID = r.s.id()
	r.s.items = append(r.s.items, *item)
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var out []model.OrderItem
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

// ---- inventory

type memInventory struct{ s *memStore }

func (r memInventory) SetStock(ctx context.Context, productID int64, variantID *int64, newStock int64) error {
	if variantID != nil {
		v := r.s.variants[*variantID]
		v.Stock = newStock
		r.s.variants[*variantID] = v
		return nil
	}
	p := r.s.products[productID]
	p.Stock = newStock
	r.s.products[productID] = p
	return nil
}

func (r memInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, variantID *int64, qty int64) (bool, error) {
	if variantID != nil {
		v, ok := r.s.variants[*variantID]
		if !ok || v.Stock < qty {
			return false, nil
		}
		v.Stock -= qty
		v.SoldCount += qty
		r.s.variants[*variantID] = v
		return true, nil
	}
	p, ok := r.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.SoldCount += qty
	r.s.products[productID] = p
	return true, nil
}

func (r memInventory) IncreaseStock(ctx context.Context, productID int64, variantID *int64, qty int64) error {
	if variantID != nil {
		v := r.s.variants[*variantID]
		v.Stock += qty
		r.s.variants[*variantID] = v
		return nil
	}
	p := r.s.products[productID]
	p.Stock += qty
	r.s.products[productID] = p
	return nil
}

func (r memInventory) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	return nil
}

// ---- products

type memProducts struct{ s *memStore }

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindWithVariants(ctx context.Context, id int64) (model.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return p, err
	}
	p.Variants, _ = r.ListVariants(ctx, id)
	return p, nil
}

func (r memProducts) FindVariant(ctx context.Context, productID, variantID int64) (model.ProductVariant, error) {
	v, ok := r.s.variants[variantID]
	if !ok || v.ProductID != productID {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	return v, nil
}

func (r memProducts) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

// ---- addresses

type memAddresses struct{ s *memStore }

func (r memAddresses) Create(ctx context.Context, a model.Address) (model.Address, error) {
	return r.s.addAddress(a), nil
}

func (r memAddresses) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	for _, a := range r.s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAddresses) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	for _, a := range r.s.addresses {
		if a.ID == addressID {
			return a, nil
		}
	}
	return model.Address{}, repo.ErrNotFound
}

func (r memAddresses) FindByIDAndUser(ctx context.Context, addressID, userID int64) (model.Address, error) {
	a, err := r.FindByID(ctx, addressID)
	if err != nil || a.UserID != userID {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (r memAddresses) FindDefault(ctx context.Context, userID int64) (model.Address, error) {
	for _, a := range r.s.addresses {
		if a.UserID == userID && a.IsDefault {
			return a, nil
		}
	}
	return model.Address{}, repo.ErrNotFound
}

func (r memAddresses) Update(ctx context.Context, address model.Address) error {
	for i := range r.s.addresses {
		if r.s.addresses[i].ID == address.ID {
			r.s.addresses[i] = address
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memAddresses) Delete(ctx context.Context, addressID int64) error {
	for i := range r.s.addresses {
		if r.s.addresses[i].ID == addressID {
			r.s.addresses = append(r.s.addresses[:i], r.s.addresses[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memAddresses) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	_, err := r.FindByIDAndUser(ctx, addressID, userID)
	return err == nil, nil
}

func (r memAddresses) SetDefault(ctx context.Context, userID, addressID int64) error {
	for i := range r.s.addresses {
		if r.s.addresses[i].UserID == userID {
			r.s.addresses[i].IsDefault = r.s.addresses[i].ID == addressID
		}
	}
	return nil
}

// ---- users

type memUsers struct {
	users map[int64]*model.User
}

func (r *memUsers) Create(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUsers) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Update(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUsers) IncrementTokenVersion(ctx context.Context, userID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

// ---- shipping zones

type memZones struct {
	zones []model.ShippingZone
	areas []model.ShippingZoneArea
	err   error
}

func (r *memZones) zone(id int64) model.ShippingZone {
	for _, z := range r.zones {
		if z.ID == id {
			return z
		}
	}
	return model.ShippingZone{}
}

func (r *memZones) withZone(areas []model.ShippingZoneArea) []model.ShippingZoneArea {
	out := make([]model.ShippingZoneArea, 0, len(areas))
	for _, a := range areas {
		a.Zone = r.zone(a.ZoneID)
		out = append(out, a)
	}
	return out
}

func (r *memZones) FindAreasByCounty(ctx context.Context, county string) ([]model.ShippingZoneArea, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.ShippingZoneArea
	for _, a := range r.areas {
		if strings.EqualFold(a.County, county) {
			out = append(out, a)
		}
	}
	return r.withZone(out), nil
}

func (r *memZones) FindAreasByTownArea(ctx context.Context, townArea string) ([]model.ShippingZoneArea, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.ShippingZoneArea
	for _, a := range r.areas {
		if a.TownArea != "" && strings.EqualFold(a.TownArea, townArea) {
			out = append(out, a)
		}
	}
	return r.withZone(out), nil
}

func (r *memZones) FindByID(ctx context.Context, zoneID int64) (model.ShippingZone, error) {
	for _, z := range r.zones {
		if z.ID == zoneID {
			return z, nil
		}
	}
	return model.ShippingZone{}, repo.ErrNotFound
}

func (r *memZones) FindDefault(ctx context.Context) (model.ShippingZone, error) {
	for _, z := range r.zones {
		if z.IsDefault {
			return z, nil
		}
	}
	return model.ShippingZone{}, repo.ErrNotFound
}

func (r *memZones) ListActive(ctx context.Context) ([]model.ShippingZone, error) {
	return r.zones, r.err
}

func (r *memZones) UpsertZone(ctx context.Context, zone model.ShippingZone) (model.ShippingZone, error) {
	r.zones = append(r.zones, zone)
	return zone, nil
}

// 送料テスト用に同梱のシードファイルに近いゾーンを作る
func kenyaZones() *memZones {
	return &memZones{
		zones: []model.ShippingZone{
			{ID: 1, Name: "Nairobi", Cost: dec("300"), MinOrderAmount: dec("5000"), DeliveryDays: "1-2", IsActive: true},
			{ID: 2, Name: "Nairobi Metro", Cost: dec("400"), MinOrderAmount: dec("7500"), DeliveryDays: "1-3", IsActive: true},
			{ID: 3, Name: "Central", Cost: dec("450"), MinOrderAmount: dec("10000"), DeliveryDays: "2-3", IsActive: true},
			{ID: 9, Name: "Rest of Kenya", Cost: dec("800"), DeliveryDays: "3-5", IsActive: true, IsDefault: true},
		},
		areas: []model.ShippingZoneArea{
			{ID: 11, ZoneID: 1, County: "Nairobi"},
			{ID: 21, ZoneID: 2, County: "Kiambu", TownArea: "Ruaka"},
			{ID: 22, ZoneID: 2, County: "Kiambu", TownArea: "Thika"},
			{ID: 23, ZoneID: 2, County: "Machakos", TownArea: "Syokimau"},
			{ID: 31, ZoneID: 3, County: "Kiambu"},
		},
	}
}

// ---- tax

type memTax struct {
	settings model.TaxSettings
	err      error
	saved    []model.TaxSettings
}

func (r *memTax) Get(ctx context.Context) (model.TaxSettings, error) {
	return r.settings, r.err
}

func (r *memTax) Save(ctx context.Context, s model.TaxSettings) error {
	if r.err != nil {
		return r.err
	}
	r.settings = s
	r.saved = append(r.saved, s)
	return nil
}

// ---- cart store

type memCart struct {
	lines    []model.CartLine
	linesErr error
	clearErr error
	cleared  bool
}

func (c *memCart) Lines(ctx context.Context) ([]model.CartLine, error) {
	return c.lines, c.linesErr
}

func (c *memCart) Clear(ctx context.Context) error {
	if c.clearErr != nil {
		return c.clearErr
	}
	c.cleared = true
	c.lines = nil
	return nil
}

// =====================
// post-order port mocks
// =====================

type NotificationSinkMock struct{ mock.Mock }

func (m *NotificationSinkMock) CreatePaymentNotification(ctx context.Context, orderID int64, orderNumber string, status model.PaymentStatus, method model.PaymentMethod, amount decimal.Decimal) error {
	args := m.Called(ctx, orderID, orderNumber, status, method, amount)
	return args.Error(0)
}

func (m *NotificationSinkMock) CreateOrderNotification(ctx context.Context, orderID int64, orderNumber string, customerName string) error {
	args := m.Called(ctx, orderID, orderNumber, customerName)
	return args.Error(0)
}

func (m *NotificationSinkMock) Create(ctx context.Context, userID int64, typ model.NotificationType, title, message, link string) error {
	args := m.Called(ctx, userID, typ, title, message, link)
	return args.Error(0)
}

var _ usecase.NotificationSink = (*NotificationSinkMock)(nil)

type MailerMock struct{ mock.Mock }

func (m *MailerMock) SendOrderConfirmation(ctx context.Context, order usecase.OrderEmail, email string, name string) (bool, error) {
	args := m.Called(ctx, order, email, name)
	return args.Bool(0), args.Error(1)
}

type EventPublisherMock struct{ mock.Mock }

func (m *EventPublisherMock) PublishOrderEvent(ctx context.Context, e usecase.OrderEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// 注文後の処理がすべて成功するmockを用意する
func acceptAll() (*NotificationSinkMock, *MailerMock, *EventPublisherMock) {
	n := new(NotificationSinkMock)
	n.On("CreatePaymentNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	n.On("CreateOrderNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	n.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	m := new(MailerMock)
	m.On("SendOrderConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	e := new(EventPublisherMock)
	e.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)
	return n, m, e
}

// =====================
// helpers
// =====================

var errBoom = errors.New("boom")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func i64(v int64) *int64 { return &v }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want *HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
