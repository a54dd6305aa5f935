package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/handler"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nairobiOnly struct{}

var nairobi = model.ShippingZone{ID: 1, Name: "Nairobi", Cost: decimal.NewFromInt(300), MinOrderAmount: decimal.NewFromInt(5000), DeliveryDays: "1-2", IsActive: true}

func (nairobiOnly) FindAreasByCounty(ctx context.Context, county string) ([]model.ShippingZoneArea, error) {
	if county == "Nairobi" {
		return []model.ShippingZoneArea{{ID: 1, ZoneID: 1, County: "Nairobi", Zone: nairobi}}, nil
	}
	return nil, nil
}

func (nairobiOnly) FindAreasByTownArea(ctx context.Context, townArea string) ([]model.ShippingZoneArea, error) {
	return nil, nil
}

func (nairobiOnly) FindByID(ctx context.Context, zoneID int64) (model.ShippingZone, error) {
	return model.ShippingZone{}, repo.ErrNotFound
}

func (nairobiOnly) FindDefault(ctx context.Context) (model.ShippingZone, error) {
	return model.ShippingZone{}, repo.ErrNotFound
}

func (nairobiOnly) ListActive(ctx context.Context) ([]model.ShippingZone, error) {
	return []model.ShippingZone{nairobi}, nil
}

func (nairobiOnly) UpsertZone(ctx context.Context, zone model.ShippingZone) (model.ShippingZone, error) {
	return zone, nil
}

func newShippingServer() *echo.Echo {
	resolver := usecase.NewShippingResolver(nairobiOnly{}, config.ShippingConfig{
		FallbackCost:         decimal.NewFromInt(500),
		FallbackDeliveryDays: "3-5",
		FallbackMessage:      "Standard delivery rates apply for your location",
	}, "KES", zap.NewNop())

	e := echo.New()
	handler.NewShippingHandler(resolver).RegisterRoutes(e)
	return e
}

func postLookup(t *testing.T, e *echo.Echo, body string) (*httptest.ResponseRecorder, handler.ShippingLookupResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/shipping/lookup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out handler.ShippingLookupResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestShippingHandler_Lookup(t *testing.T) {
	e := newShippingServer()

	rec, out := postLookup(t, e, `{"county":"nairobi","town_area":"Kilimani","subtotal":"5000"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Success)
	assert.True(t, out.IsFree)
	assert.True(t, out.Cost.IsZero())
	require.NotNil(t, out.ZoneID)
	assert.Equal(t, int64(1), *out.ZoneID)

	rec, out = postLookup(t, e, `{"county":"Turkana","subtotal":"100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, out.ZoneID)
	assert.Equal(t, "500", out.Cost.String())
	assert.Equal(t, "3-5", out.DeliveryDays)
}

func TestShippingHandler_Lookup_BadInput(t *testing.T) {
	e := newShippingServer()

	rec, _ := postLookup(t, e, `{"county":"Nairobi","subtotal":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = postLookup(t, e, `{"county":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShippingHandler_Lookup_OutOfRangeSubtotal(t *testing.T) {
	e := newShippingServer()

	for _, body := range []string{
		`{"county":"Nairobi","subtotal":1e20000000}`,
		`{"county":"Nairobi","subtotal":"1e-20000000"}`,
		`{"county":"Nairobi","subtotal":"10000000000000"}`,
	} {
		start := time.Now()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/shipping/lookup", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "invalid subtotal", body)
		assert.Less(t, time.Since(start), time.Second, body)
	}
}

func TestShippingHandler_Zones(t *testing.T) {
	e := newShippingServer()

	req := httptest.NewRequest(http.MethodGet, "/shipping/zones", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Nairobi"`)
}
