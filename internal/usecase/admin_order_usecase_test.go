package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// user 7 の注文（商品pを2個）を保存する
func seedOrder(s *memStore, p model.Product, status model.OrderStatus) model.Order {
	o := model.Order{
		ID:          s.id(),
		OrderNumber: "ORD-20240309-SEED" + itoa(s.nextID),
		UserID:      7,
		Status:      status,
		Subtotal:    p.Price.Mul(dec("2")),
		TotalAmount: p.Price.Mul(dec("2")),
	}
	s.orders = append(s.orders, o)
	s.items = append(s.items, model.OrderItem{
		ID: s.id(), OrderID: o.ID, ProductID: p.ID, ProductName: p.Name,
		Quantity: 2, UnitPrice: p.Price, LineTotal: o.Subtotal,
	})
	return o
}

func newAdminFixture() (*usecase.AdminOrderUsecase, *memStore, *AuditRepoMock, *NotificationSinkMock, model.Product) {
	store := newMemStore()
	p := store.addProduct(model.Product{Name: "Linen Throw", Price: dec("1500"), Stock: 5, IsActive: true})
	audit := new(AuditRepoMock)
	sink := new(NotificationSinkMock)
	return usecase.NewAdminOrderUsecase(store, audit, sink, zap.NewNop()), store, audit, sink, p
}

func TestAdminOrderUsecase_UpdateStatus_RejectsInvalidInput(t *testing.T) {
	uc, _, audit, _, _ := newAdminFixture()
	ctx := context.Background()

	assertHTTPStatus(t, uc.UpdateStatus(ctx, 0, 1, usecase.AdminUpdateOrderStatusInput{Status: "shipped"}), http.StatusUnauthorized)
	assertHTTPStatus(t, uc.UpdateStatus(ctx, 1, 0, usecase.AdminUpdateOrderStatusInput{Status: "shipped"}), http.StatusBadRequest)
	assertHTTPStatus(t, uc.UpdateStatus(ctx, 1, 1, usecase.AdminUpdateOrderStatusInput{Status: "lost"}), http.StatusBadRequest)
	assertHTTPStatus(t, uc.UpdateStatus(ctx, 1, 424242, usecase.AdminUpdateOrderStatusInput{Status: "shipped"}), http.StatusNotFound)

	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_TerminalStatuses(t *testing.T) {
	cases := []struct {
		name string
		from model.OrderStatus
		to   string
		msg  string
	}{
		{"cancelled is final", model.OrderStatusCancelled, "processing", "cannot change cancelled order"},
		{"delivered is final", model.OrderStatusDelivered, "cancelled", "cannot change delivered order"},
		{"shipped cannot be cancelled", model.OrderStatusShipped, "cancelled", "cannot cancel shipped order"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, store, audit, sink, p := newAdminFixture()
			o := seedOrder(store, p, tc.from)

			err := uc.UpdateStatus(context.Background(), 1, o.ID, usecase.AdminUpdateOrderStatusInput{Status: tc.to})
			assertHTTPStatus(t, err, http.StatusBadRequest)
			assertErrContains(t, err, tc.msg)

			assert.Equal(t, tc.from, store.orders[0].Status)
			assert.Equal(t, int64(5), store.products[p.ID].Stock)
			audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			sink.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdminOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	uc, store, audit, sink, p := newAdminFixture()
	o := seedOrder(store, p, model.OrderStatusProcessing)

	require.NoError(t, uc.UpdateStatus(context.Background(), 1, o.ID, usecase.AdminUpdateOrderStatusInput{Status: " PROCESSING "}))

	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	sink.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_CancelRestocksAndAudits(t *testing.T) {
	uc, store, audit, sink, p := newAdminFixture()
	o := seedOrder(store, p, model.OrderStatusPending)

	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == o.ID &&
			l.BeforeJSON == `{"status":"pending"}` &&
			l.AfterJSON == `{"status":"cancelled"}`
	})).Return(nil).Once()
	sink.On("Create", mock.Anything, int64(7), model.NotificationTypeOrder, "Order update",
		"Your order "+o.OrderNumber+" is now cancelled.", "/orders/"+itoa(o.ID)).Return(nil).Once()

	require.NoError(t, uc.UpdateStatus(context.Background(), 1, o.ID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"}))

	assert.Equal(t, model.OrderStatusCancelled, store.orders[0].Status)
	assert.Equal(t, int64(7), store.products[p.ID].Stock)
	audit.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_AuditFailureRollsBack(t *testing.T) {
	uc, store, audit, _, p := newAdminFixture()
	o := seedOrder(store, p, model.OrderStatusPending)

	audit.On("Create", mock.Anything, mock.Anything).Return(errBoom).Once()

	err := uc.UpdateStatus(context.Background(), 1, o.ID, usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	assertHTTPStatus(t, err, http.StatusInternalServerError)

	assert.Equal(t, model.OrderStatusPending, store.orders[0].Status)
	assert.Equal(t, int64(5), store.products[p.ID].Stock)
}

func TestAdminOrderUsecase_UpdateStatus_NotificationFailureIsIgnored(t *testing.T) {
	uc, store, audit, sink, p := newAdminFixture()
	o := seedOrder(store, p, model.OrderStatusProcessing)

	audit.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	sink.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errBoom).Once()

	require.NoError(t, uc.UpdateStatus(context.Background(), 1, o.ID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"}))
	assert.Equal(t, model.OrderStatusShipped, store.orders[0].Status)
	// 発送では在庫は動かない
	assert.Equal(t, int64(5), store.products[p.ID].Stock)
}

func TestAdminOrderUsecase_List(t *testing.T) {
	uc, store, _, _, p := newAdminFixture()
	seedOrder(store, p, model.OrderStatusPending)
	seedOrder(store, p, model.OrderStatusShipped)
	ctx := context.Background()

	_, err := uc.List(ctx, repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	_, err = uc.List(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 101})
	assertHTTPStatus(t, err, http.StatusBadRequest)
	_, err = uc.List(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "lost"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	out, err := uc.List(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	require.Len(t, out.Orders, 2)
	require.Len(t, out.Orders[0].Items, 1)
	assert.Equal(t, "Linen Throw", out.Orders[0].Items[0].Name)
}

func TestParseDateTimeRFC3339(t *testing.T) {
	got, ok := usecase.ParseDateTimeRFC3339("2024-03-09T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok = usecase.ParseDateTimeRFC3339("")
	assert.False(t, ok)
	_, ok = usecase.ParseDateTimeRFC3339("09/03/2024")
	assert.False(t, ok)
}

func TestAdminOrderUsecase_History(t *testing.T) {
	uc, _, audit, _, _ := newAdminFixture()
	ctx := context.Background()

	_, err := uc.History(ctx, 0, 10)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	entry := model.AuditLog{ID: 3, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 12}
	audit.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.ResourceType != nil && *f.ResourceType == model.AuditResourceOrder &&
			f.ResourceID != nil && *f.ResourceID == 12 && f.Limit == 10
	})).Return([]model.AuditLog{entry}, nil).Once()

	logs, err := uc.History(ctx, 12, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.AuditLog{entry}, logs)

	audit.On("List", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	_, err = uc.History(ctx, 13, 10)
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)

	audit.AssertExpectations(t)
}
